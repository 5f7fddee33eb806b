package commands

import (
	"context"
	"encoding/json"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
	contractsv1 "ijaism/contracts/gen/events/v1"
)

const sourceService = "manuscript-service"

func newEditorialEnvelope(
	eventID string,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}

func newArticleEvent(ctx context.Context, ids ports.IDGenerator, eventType string, articleID string, at time.Time, data map[string]any) (ports.EventEnvelope, error) {
	eventID, err := ids.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return newEditorialEnvelope(eventID, eventType, "article_id", articleID, at, data)
}

// statusChangeRecord builds the history row and the status_changed event for
// one applied transition.
func statusChangeRecord(
	ctx context.Context,
	ids ports.IDGenerator,
	article entities.Article,
	change services.StatusChange,
	actor entities.Principal,
	comments string,
) (entities.StatusTransition, ports.EventEnvelope, error) {
	transitionID, err := ids.NewID(ctx)
	if err != nil {
		return entities.StatusTransition{}, ports.EventEnvelope{}, err
	}
	transition := entities.StatusTransition{
		TransitionID: transitionID,
		ArticleID:    article.ArticleID,
		FromStatus:   change.From,
		ToStatus:     change.To,
		ActorID:      actor.UserID,
		ActorRole:    actor.Role,
		Comments:     comments,
		ReviewRound:  article.ReviewRound,
		CreatedAt:    change.At,
	}
	event, err := newArticleEvent(ctx, ids, contractsv1.EventArticleStatusChanged, article.ArticleID, change.At, map[string]any{
		"article_id":  article.ArticleID,
		"journal_id":  article.JournalID,
		"author_id":   article.AuthorID,
		"from_status": string(change.From),
		"to_status":   string(change.To),
		"actor_id":    actor.UserID,
		"actor_role":  string(actor.Role),
		"round":       article.ReviewRound,
		"changed_at":  change.At.Format(time.RFC3339),
	})
	if err != nil {
		return entities.StatusTransition{}, ports.EventEnvelope{}, err
	}
	return transition, event, nil
}
