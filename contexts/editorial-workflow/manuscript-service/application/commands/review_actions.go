package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
	contractsv1 "ijaism/contracts/gen/events/v1"
)

type StartReviewCommand struct {
	ActorID  string
	ReviewID string
}

type SubmitReviewCommand struct {
	ActorID          string
	ReviewID         string
	Decision         string
	CommentsToAuthor string
	CommentsToEditor string
}

type DeclineReviewCommand struct {
	ActorID  string
	ReviewID string
	Reason   string
}

// ReviewActionsUseCase groups the reviewer-facing mutations. Each one is a
// compare-and-set on the review and on the owning article's status.
type ReviewActionsUseCase struct {
	Articles ports.ArticleRepository
	Reviews  ports.ReviewRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

type reviewContext struct {
	actor   entities.Principal
	review  entities.Review
	article entities.Article
}

func (uc ReviewActionsUseCase) load(ctx context.Context, actorID string, reviewID string) (reviewContext, error) {
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, actorID)
	if err != nil {
		return reviewContext{}, err
	}
	review, err := uc.Reviews.GetReview(ctx, strings.TrimSpace(reviewID))
	if err != nil {
		return reviewContext{}, err
	}
	if !services.Can(actor, services.ActionActOnReview, services.AccessFacts{ReviewerID: review.ReviewerID}) {
		return reviewContext{}, domainerrors.ErrAuthorization
	}
	article, err := uc.Articles.GetArticle(ctx, review.ArticleID)
	if err != nil {
		return reviewContext{}, err
	}
	return reviewContext{actor: actor, review: review, article: article}, nil
}

func ensureReviewOpen(rc reviewContext) error {
	switch rc.review.Status {
	case entities.ReviewStatusCompleted:
		return domainerrors.ErrReviewAlreadyCompleted
	case entities.ReviewStatusDeclined:
		return fmt.Errorf("%w: review was declined", domainerrors.ErrReviewClosed)
	}
	if !rc.article.Status.OpenForReviews() {
		return fmt.Errorf("%w: article is %s", domainerrors.ErrReviewClosed, rc.article.Status)
	}
	return nil
}

func (uc ReviewActionsUseCase) Start(ctx context.Context, cmd StartReviewCommand) (entities.Review, error) {
	logger := application.ResolveLogger(uc.Logger)
	rc, err := uc.load(ctx, cmd.ActorID, cmd.ReviewID)
	if err != nil {
		return entities.Review{}, err
	}
	if err := ensureReviewOpen(rc); err != nil {
		return entities.Review{}, err
	}
	if rc.review.Status == entities.ReviewStatusInProgress {
		return rc.review, nil
	}

	now := uc.Clock.Now().UTC()
	next := rc.review
	next.Status = entities.ReviewStatusInProgress
	next.StartedAt = &now
	next.UpdatedAt = now
	next.Version = rc.review.Version + 1
	if err := uc.Reviews.SaveReview(ctx, ports.ReviewMutation{
		Review:                next,
		ExpectedVersion:       rc.review.Version,
		ExpectedArticleStatus: rc.article.Status,
	}); err != nil {
		return entities.Review{}, err
	}

	logger.Info("review started",
		"event", "review_started",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"review_id", next.ReviewID,
		"article_id", next.ArticleID,
		"reviewer_id", next.ReviewerID,
	)
	return next, nil
}

func (uc ReviewActionsUseCase) Submit(ctx context.Context, cmd SubmitReviewCommand) (entities.Review, error) {
	logger := application.ResolveLogger(uc.Logger)
	rc, err := uc.load(ctx, cmd.ActorID, cmd.ReviewID)
	if err != nil {
		return entities.Review{}, err
	}
	if err := ensureReviewOpen(rc); err != nil {
		return entities.Review{}, err
	}
	decision, ok := entities.ParseReviewDecision(strings.TrimSpace(cmd.Decision))
	if !ok {
		return entities.Review{}, fmt.Errorf("%w: unknown review decision %q", domainerrors.ErrValidation, cmd.Decision)
	}
	if decision == entities.ReviewDecisionRevisionRequested {
		if err := services.ValidateRevisionComments(cmd.CommentsToAuthor, cmd.CommentsToEditor, domainerrors.ErrValidation); err != nil {
			return entities.Review{}, err
		}
	}

	now := uc.Clock.Now().UTC()
	next := rc.review
	if next.StartedAt == nil {
		next.StartedAt = &now
	}
	next.Status = entities.ReviewStatusCompleted
	next.Decision = decision
	next.CommentsToAuthor = strings.TrimSpace(cmd.CommentsToAuthor)
	next.CommentsToEditor = strings.TrimSpace(cmd.CommentsToEditor)
	next.CompletedAt = &now
	next.UpdatedAt = now
	next.Version = rc.review.Version + 1

	event, err := newArticleEvent(ctx, uc.IDGen, contractsv1.EventReviewSubmitted, next.ArticleID, now, map[string]any{
		"article_id":      next.ArticleID,
		"review_id":       next.ReviewID,
		"reviewer_id":     next.ReviewerID,
		"reviewer_number": next.ReviewerNumber,
		"round":           next.Round,
		"decision":        string(next.Decision),
		"completed_at":    now.Format(time.RFC3339),
	})
	if err != nil {
		return entities.Review{}, err
	}
	if err := uc.Reviews.SaveReview(ctx, ports.ReviewMutation{
		Review:                next,
		ExpectedVersion:       rc.review.Version,
		ExpectedArticleStatus: rc.article.Status,
		Events:                []ports.EventEnvelope{event},
	}); err != nil {
		logger.Warn("review submission rejected",
			"event", "review_submit_rejected",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"review_id", next.ReviewID,
			"error", err.Error(),
		)
		return entities.Review{}, err
	}

	logger.Info("review submitted",
		"event", "review_submitted",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"review_id", next.ReviewID,
		"article_id", next.ArticleID,
		"decision", string(next.Decision),
	)
	return next, nil
}

func (uc ReviewActionsUseCase) Decline(ctx context.Context, cmd DeclineReviewCommand) (entities.Review, error) {
	logger := application.ResolveLogger(uc.Logger)
	rc, err := uc.load(ctx, cmd.ActorID, cmd.ReviewID)
	if err != nil {
		return entities.Review{}, err
	}
	if err := ensureReviewOpen(rc); err != nil {
		return entities.Review{}, err
	}

	now := uc.Clock.Now().UTC()
	next := rc.review
	next.Status = entities.ReviewStatusDeclined
	next.CommentsToEditor = strings.TrimSpace(cmd.Reason)
	next.DeclinedAt = &now
	next.UpdatedAt = now
	next.Version = rc.review.Version + 1

	event, err := newArticleEvent(ctx, uc.IDGen, contractsv1.EventReviewDeclined, next.ArticleID, now, map[string]any{
		"article_id":      next.ArticleID,
		"review_id":       next.ReviewID,
		"reviewer_id":     next.ReviewerID,
		"reviewer_number": next.ReviewerNumber,
		"declined_at":     now.Format(time.RFC3339),
	})
	if err != nil {
		return entities.Review{}, err
	}
	if err := uc.Reviews.SaveReview(ctx, ports.ReviewMutation{
		Review:                next,
		ExpectedVersion:       rc.review.Version,
		ExpectedArticleStatus: rc.article.Status,
		Events:                []ports.EventEnvelope{event},
	}); err != nil {
		return entities.Review{}, err
	}

	logger.Info("review declined",
		"event", "review_declined",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"review_id", next.ReviewID,
		"article_id", next.ArticleID,
	)
	return next, nil
}
