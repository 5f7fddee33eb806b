package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type DecideCommand struct {
	ActorID          string
	ArticleID        string
	Decision         string
	CommentsToAuthor string
	CommentsToEditor string
	Reason           string
	DOI              string
}

type DecideUseCase struct {
	Articles  ports.ArticleRepository
	Users     ports.UserRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	DOIPrefix string
	Logger    *slog.Logger
}

func (uc DecideUseCase) Execute(ctx context.Context, cmd DecideCommand) (entities.Article, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Article{}, err
	}
	decision, ok := services.ParseEditorDecision(cmd.Decision)
	if !ok {
		return entities.Article{}, fmt.Errorf("%w: unknown editor decision %q", domainerrors.ErrValidation, cmd.Decision)
	}
	article, err := uc.Articles.GetArticle(ctx, strings.TrimSpace(cmd.ArticleID))
	if err != nil {
		return entities.Article{}, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return entities.Article{}, err
	}

	next, change, err := services.ApplyTransition(article, services.TransitionRequest{
		Actor:            actor,
		Facts:            facts,
		Target:           decision.Target(),
		Decision:         decision,
		CommentsToAuthor: cmd.CommentsToAuthor,
		CommentsToEditor: cmd.CommentsToEditor,
		Reason:           cmd.Reason,
		DOI:              cmd.DOI,
		DOIPrefix:        uc.DOIPrefix,
		Now:              uc.Clock.Now(),
	})
	if err != nil {
		logger.Warn("editor decision rejected",
			"event", "article_decision_rejected",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"article_id", article.ArticleID,
			"actor_id", actor.UserID,
			"decision", string(decision),
			"error", err.Error(),
		)
		return entities.Article{}, err
	}

	comments := strings.TrimSpace(cmd.CommentsToAuthor)
	if next.Status == entities.ArticleStatusRejected {
		comments = next.RejectionReason
	}
	transition, event, err := statusChangeRecord(ctx, uc.IDGen, next, change, actor, comments)
	if err != nil {
		return entities.Article{}, err
	}
	if err := uc.Articles.SaveArticle(ctx, ports.ArticleMutation{
		Article:         next,
		ExpectedVersion: article.Version,
		Transition:      &transition,
		Events:          []ports.EventEnvelope{event},
	}); err != nil {
		return entities.Article{}, err
	}

	logger.Info("article status changed",
		"event", "article_status_changed",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", next.ArticleID,
		"actor_id", actor.UserID,
		"from_status", string(change.From),
		"to_status", string(change.To),
	)
	return next, nil
}
