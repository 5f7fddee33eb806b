package commands

import (
	"context"
	"errors"
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

const (
	// DefaultReviewPeriod applies when no review period is configured.
	DefaultReviewPeriod = 4 * 7 * 24 * time.Hour

	defaultAutoAssignAttempts = 3
	operationAutoAssign       = "article.auto_assign"
)

type AssignReviewersCommand struct {
	ActorID     string
	ArticleID   string
	ReviewerIDs []string
}

type AssignReviewersResult struct {
	Article  entities.Article
	Reviews  []entities.Review
	Replayed bool
}

type AssignReviewersUseCase struct {
	Articles     ports.ArticleRepository
	Reviews      ports.ReviewRepository
	Users        ports.UserRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	ReviewPeriod time.Duration
	Logger       *slog.Logger
}

func (uc AssignReviewersUseCase) Execute(ctx context.Context, cmd AssignReviewersCommand) (AssignReviewersResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return AssignReviewersResult{}, err
	}
	article, err := uc.Articles.GetArticle(ctx, strings.TrimSpace(cmd.ArticleID))
	if err != nil {
		return AssignReviewersResult{}, err
	}
	if err := ensureAssignable(article); err != nil {
		return AssignReviewersResult{}, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return AssignReviewersResult{}, err
	}
	if !services.Can(actor, services.ActionAssignReviewers, facts) {
		return AssignReviewersResult{}, domainerrors.ErrAuthorization
	}

	reviewerIDs := make([]string, 0, len(cmd.ReviewerIDs))
	for _, reviewerID := range cmd.ReviewerIDs {
		reviewerIDs = append(reviewerIDs, strings.TrimSpace(reviewerID))
	}
	existing, err := uc.Reviews.ListReviews(ctx, ports.ReviewFilter{ArticleID: article.ArticleID})
	if err != nil {
		return AssignReviewersResult{}, err
	}
	ledger := services.NewReviewLedger(existing)
	if _, err := ledger.Plan(reviewerIDs); err != nil {
		return AssignReviewersResult{}, err
	}
	for _, reviewerID := range reviewerIDs {
		if err := uc.ensureEligible(ctx, article, reviewerID); err != nil {
			return AssignReviewersResult{}, err
		}
	}

	now := uc.Clock.Now().UTC()
	mutation, err := buildAssignment(ctx, uc.IDGen, article, actor, facts, ledger, reviewerIDs, now, reviewPeriodOrDefault(uc.ReviewPeriod))
	if err != nil {
		return AssignReviewersResult{}, err
	}
	if err := uc.Reviews.AssignReviews(ctx, mutation); err != nil {
		logger.Warn("reviewer assignment rejected",
			"event", "reviewers_assign_rejected",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"article_id", article.ArticleID,
			"error", err.Error(),
		)
		return AssignReviewersResult{}, err
	}

	logger.Info("reviewers assigned",
		"event", "reviewers_assigned",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", article.ArticleID,
		"actor_id", actor.UserID,
		"assigned_count", len(mutation.Reviews),
		"article_status", string(mutation.Article.Status),
	)
	return AssignReviewersResult{Article: mutation.Article, Reviews: mutation.Reviews}, nil
}

func (uc AssignReviewersUseCase) ensureEligible(ctx context.Context, article entities.Article, reviewerID string) error {
	user, err := uc.Users.GetUser(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return fmt.Errorf("%w: reviewer %s does not exist", domainerrors.ErrValidation, reviewerID)
		}
		return err
	}
	if user.Role != entities.RoleReviewer || !user.IsActive {
		return fmt.Errorf("%w: user %s is not an active reviewer", domainerrors.ErrValidation, reviewerID)
	}
	if user.UserID == article.AuthorID {
		return fmt.Errorf("%w: the author cannot review their own article", domainerrors.ErrValidation)
	}
	return nil
}

type AutoAssignReviewersCommand struct {
	ActorID        string
	ArticleID      string
	IdempotencyKey string
}

type AutoAssignReviewersUseCase struct {
	Articles       ports.ArticleRepository
	Reviews        ports.ReviewRepository
	Users          ports.UserRepository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	ReviewPeriod   time.Duration
	MaxAttempts    int
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

type autoAssignReplayPayload struct {
	Article entities.Article  `json:"article"`
	Reviews []entities.Review `json:"reviews"`
}

func (uc AutoAssignReviewersUseCase) Execute(ctx context.Context, cmd AutoAssignReviewersCommand) (AssignReviewersResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return AssignReviewersResult{}, err
	}

	now := uc.Clock.Now().UTC()
	key := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := ""
	if key != "" && uc.Idempotency != nil {
		requestHash, err = hashRequest(cmd)
		if err != nil {
			return AssignReviewersResult{}, err
		}
		key = scopedKey(operationAutoAssign, actor.UserID, key)
		var replay autoAssignReplayPayload
		found, err := loadReplay(ctx, uc.Idempotency, key, requestHash, now, &replay)
		if err != nil {
			return AssignReviewersResult{}, err
		}
		if found {
			return AssignReviewersResult{Article: replay.Article, Reviews: replay.Reviews, Replayed: true}, nil
		}
	}

	attempts := uc.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAutoAssignAttempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		mutation, err := uc.attempt(ctx, access, actor, strings.TrimSpace(cmd.ArticleID))
		if err == nil {
			if requestHash != "" {
				payload := autoAssignReplayPayload{Article: mutation.Article, Reviews: mutation.Reviews}
				recordReplay(ctx, logger, uc.Idempotency, operationAutoAssign, key, requestHash, now, uc.IdempotencyTTL, payload)
			}
			logger.Info("reviewers auto assigned",
				"event", "reviewers_auto_assigned",
				"module", "editorial-workflow/manuscript-service",
				"layer", "application",
				"article_id", mutation.Article.ArticleID,
				"actor_id", actor.UserID,
				"assigned_count", len(mutation.Reviews),
				"attempt", attempt,
			)
			return AssignReviewersResult{Article: mutation.Article, Reviews: mutation.Reviews}, nil
		}
		if requestHash != "" && (errors.Is(err, domainerrors.ErrReviewerCapExceeded) || errors.Is(err, domainerrors.ErrNoEligibleReviewers)) {
			// A request with the same key may have filled the ledger first.
			var replay autoAssignReplayPayload
			if found, loadErr := loadReplay(ctx, uc.Idempotency, key, requestHash, now, &replay); loadErr == nil && found {
				return AssignReviewersResult{Article: replay.Article, Reviews: replay.Reviews, Replayed: true}, nil
			}
		}
		if !errors.Is(err, domainerrors.ErrConflict) && !errors.Is(err, domainerrors.ErrDuplicateReviewer) {
			return AssignReviewersResult{}, err
		}
		lastErr = err
		logger.Warn("auto assignment conflicted, retrying",
			"event", "reviewers_auto_assign_conflict",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"article_id", strings.TrimSpace(cmd.ArticleID),
			"attempt", attempt,
			"error", err.Error(),
		)
	}
	return AssignReviewersResult{}, fmt.Errorf("%w: auto assignment gave up after %d attempts: %v", domainerrors.ErrConflict, attempts, lastErr)
}

func (uc AutoAssignReviewersUseCase) attempt(
	ctx context.Context,
	access application.AccessResolver,
	actor entities.Principal,
	articleID string,
) (ports.AssignmentMutation, error) {
	article, err := uc.Articles.GetArticle(ctx, articleID)
	if err != nil {
		return ports.AssignmentMutation{}, err
	}
	if err := ensureAssignable(article); err != nil {
		return ports.AssignmentMutation{}, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return ports.AssignmentMutation{}, err
	}
	if !services.Can(actor, services.ActionAssignReviewers, facts) {
		return ports.AssignmentMutation{}, domainerrors.ErrAuthorization
	}

	existing, err := uc.Reviews.ListReviews(ctx, ports.ReviewFilter{ArticleID: article.ArticleID})
	if err != nil {
		return ports.AssignmentMutation{}, err
	}
	ledger := services.NewReviewLedger(existing)
	if ledger.Remaining() == 0 {
		return ports.AssignmentMutation{}, fmt.Errorf("%w: ledger is full", domainerrors.ErrReviewerCapExceeded)
	}

	pool, err := uc.Users.ListUsers(ctx, ports.UserFilter{Role: entities.RoleReviewer, ActiveOnly: true})
	if err != nil {
		return ports.AssignmentMutation{}, err
	}
	eligible := make([]entities.User, 0, len(pool))
	eligibleIDs := make([]string, 0, len(pool))
	for _, user := range pool {
		if user.UserID == article.AuthorID || ledger.HasReviewer(user.UserID) {
			continue
		}
		eligible = append(eligible, user)
		eligibleIDs = append(eligibleIDs, user.UserID)
	}
	if len(eligible) == 0 {
		return ports.AssignmentMutation{}, domainerrors.ErrNoEligibleReviewers
	}
	loads, err := uc.Reviews.ActiveReviewLoads(ctx, eligibleIDs)
	if err != nil {
		return ports.AssignmentMutation{}, err
	}
	candidates := make([]services.ReviewerCandidate, 0, len(eligible))
	for _, user := range eligible {
		candidates = append(candidates, services.ReviewerCandidate{
			UserID:     user.UserID,
			CreatedAt:  user.CreatedAt,
			ActiveLoad: loads[user.UserID],
		})
	}
	selected := services.SelectReviewers(candidates, ledger.Remaining())
	reviewerIDs := make([]string, 0, len(selected))
	for _, candidate := range selected {
		reviewerIDs = append(reviewerIDs, candidate.UserID)
	}

	now := uc.Clock.Now().UTC()
	mutation, err := buildAssignment(ctx, uc.IDGen, article, actor, facts, ledger, reviewerIDs, now, reviewPeriodOrDefault(uc.ReviewPeriod))
	if err != nil {
		return ports.AssignmentMutation{}, err
	}
	if err := uc.Reviews.AssignReviews(ctx, mutation); err != nil {
		return ports.AssignmentMutation{}, err
	}
	return mutation, nil
}

// ensureAssignable allows assignment only while the first review round is
// being staffed.
func ensureAssignable(article entities.Article) error {
	switch article.Status {
	case entities.ArticleStatusSubmitted, entities.ArticleStatusUnderReview:
		return nil
	default:
		return fmt.Errorf("%w: reviewers cannot be assigned in status %s", domainerrors.ErrInvalidTransition, article.Status)
	}
}

func reviewPeriodOrDefault(period time.Duration) time.Duration {
	if period <= 0 {
		return DefaultReviewPeriod
	}
	return period
}

// buildAssignment plans reviewer numbers and, for a submitted article, moves
// it to under_review in the same write. The article version is always bumped
// so concurrent assignments on the same article serialize.
func buildAssignment(
	ctx context.Context,
	ids ports.IDGenerator,
	article entities.Article,
	actor entities.Principal,
	facts services.AccessFacts,
	ledger services.ReviewLedger,
	reviewerIDs []string,
	now time.Time,
	reviewPeriod time.Duration,
) (ports.AssignmentMutation, error) {
	numbers, err := ledger.Plan(reviewerIDs)
	if err != nil {
		return ports.AssignmentMutation{}, err
	}

	mutation := ports.AssignmentMutation{ExpectedVersion: article.Version}
	next := article
	if article.Status == entities.ArticleStatusSubmitted {
		moved, change, err := services.ApplyTransition(article, services.TransitionRequest{
			Actor:    actor,
			Facts:    facts,
			Target:   entities.ArticleStatusUnderReview,
			Decision: services.DecisionSendToReview,
			Now:      now,
		})
		if err != nil {
			return ports.AssignmentMutation{}, err
		}
		transition, event, err := statusChangeRecord(ctx, ids, moved, change, actor, "reviewers assigned")
		if err != nil {
			return ports.AssignmentMutation{}, err
		}
		next = moved
		mutation.Transition = &transition
		mutation.Events = append(mutation.Events, event)
	} else {
		next.UpdatedAt = now
		next.Version = article.Version + 1
	}
	mutation.Article = next

	dueDate := now.Add(reviewPeriod)
	for i, reviewerID := range reviewerIDs {
		reviewID, err := ids.NewID(ctx)
		if err != nil {
			return ports.AssignmentMutation{}, err
		}
		review := entities.Review{
			ReviewID:       reviewID,
			ArticleID:      article.ArticleID,
			ReviewerID:     reviewerID,
			ReviewerNumber: numbers[i],
			Round:          article.ReviewRound,
			Status:         entities.ReviewStatusPending,
			AssignedBy:     actor.UserID,
			AssignedAt:     now,
			DueDate:        dueDate,
			Version:        1,
			UpdatedAt:      now,
		}
		event, err := newArticleEvent(ctx, ids, contractsv1.EventReviewAssigned, article.ArticleID, now, map[string]any{
			"article_id":      article.ArticleID,
			"review_id":       review.ReviewID,
			"reviewer_id":     review.ReviewerID,
			"reviewer_number": review.ReviewerNumber,
			"round":           review.Round,
			"due_date":        review.DueDate.Format(time.RFC3339),
			"assigned_by":     actor.UserID,
		})
		if err != nil {
			return ports.AssignmentMutation{}, err
		}
		mutation.Reviews = append(mutation.Reviews, review)
		mutation.Events = append(mutation.Events, event)
	}
	return mutation, nil
}
