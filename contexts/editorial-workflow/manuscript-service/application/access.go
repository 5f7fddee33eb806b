package application

import (
	"context"
	"errors"
	"strings"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

// AccessResolver turns an authenticated user id into a principal and collects
// the facts the role authority needs. Roles always come from the user
// directory, never from the caller.
type AccessResolver struct {
	Users   ports.UserRepository
	Reviews ports.ReviewRepository
}

func (r AccessResolver) Principal(ctx context.Context, actorID string) (entities.Principal, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return entities.Principal{}, domainerrors.ErrUnauthenticated
	}
	user, err := r.Users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return entities.Principal{}, domainerrors.ErrUnauthenticated
		}
		return entities.Principal{}, err
	}
	if !user.IsActive {
		return entities.Principal{}, domainerrors.ErrUnauthenticated
	}
	return user.Principal(), nil
}

// JournalFacts covers journal-scoped actions such as issue creation.
func (r AccessResolver) JournalFacts(ctx context.Context, actor entities.Principal, journalID string) (services.AccessFacts, error) {
	facts := services.AccessFacts{JournalID: strings.TrimSpace(journalID)}
	if actor.Role.IsEditorial() {
		journalIDs, err := r.Users.ListEditorJournals(ctx, actor.UserID)
		if err != nil {
			return services.AccessFacts{}, err
		}
		facts.EditorJournalIDs = journalIDs
	}
	return facts, nil
}

// ArticleFacts covers article-scoped actions. Reviewer assignments are only
// loaded when the actor is a reviewer.
func (r AccessResolver) ArticleFacts(ctx context.Context, actor entities.Principal, article entities.Article) (services.AccessFacts, error) {
	facts, err := r.JournalFacts(ctx, actor, article.JournalID)
	if err != nil {
		return services.AccessFacts{}, err
	}
	facts.ArticleAuthorID = article.AuthorID
	if actor.Role == entities.RoleReviewer && r.Reviews != nil {
		reviews, err := r.Reviews.ListReviews(ctx, ports.ReviewFilter{ArticleID: article.ArticleID})
		if err != nil {
			return services.AccessFacts{}, err
		}
		for _, review := range reviews {
			facts.AssignedReviewerIDs = append(facts.AssignedReviewerIDs, review.ReviewerID)
		}
	}
	return facts, nil
}
