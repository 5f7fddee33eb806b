package queries

import (
	"context"
	"log/slog"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type ListReviewsUseCase struct {
	Articles ports.ArticleRepository
	Reviews  ports.ReviewRepository
	Users    ports.UserRepository
	Logger   *slog.Logger
}

// Execute returns the reviews of an article as the actor may see them.
// Editors see everything. Authors get a blind view of completed reviews
// without reviewer identity or confidential comments. Reviewers see only
// their own review.
func (uc ListReviewsUseCase) Execute(ctx context.Context, actorID string, articleID string) ([]entities.Review, error) {
	access := application.AccessResolver{Users: uc.Users, Reviews: uc.Reviews}
	actor, article, err := loadVisibleArticle(ctx, access, uc.Articles, actorID, articleID)
	if err != nil {
		return nil, err
	}
	reviews, err := uc.Reviews.ListReviews(ctx, ports.ReviewFilter{ArticleID: article.ArticleID})
	if err != nil {
		return nil, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return nil, err
	}
	if services.Can(actor, services.ActionViewAllReviews, facts) {
		return reviews, nil
	}

	items := make([]entities.Review, 0, len(reviews))
	for _, review := range reviews {
		switch {
		case actor.Role == entities.RoleReviewer:
			if review.ReviewerID == actor.UserID {
				items = append(items, review)
			}
		case actor.UserID == article.AuthorID:
			if review.Status == entities.ReviewStatusCompleted {
				items = append(items, blind(review))
			}
		}
	}
	return items, nil
}

func blind(review entities.Review) entities.Review {
	review.ReviewerID = ""
	review.CommentsToEditor = ""
	review.AssignedBy = ""
	return review
}

type RecommendationResult struct {
	ArticleID       string
	ReviewRound     int
	AggregatedRound int
	Aggregation     services.Aggregation
}

type RecommendationUseCase struct {
	Articles ports.ArticleRepository
	Reviews  ports.ReviewRepository
	Users    ports.UserRepository
	Logger   *slog.Logger
}

// Execute aggregates the latest review round that has reviewers. The result
// is advisory.
func (uc RecommendationUseCase) Execute(ctx context.Context, actorID string, articleID string) (RecommendationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, actorID)
	if err != nil {
		return RecommendationResult{}, err
	}
	article, err := uc.Articles.GetArticle(ctx, articleID)
	if err != nil {
		return RecommendationResult{}, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return RecommendationResult{}, err
	}
	if !services.Can(actor, services.ActionViewAllReviews, facts) {
		return RecommendationResult{}, domainerrors.ErrAuthorization
	}
	reviews, err := uc.Reviews.ListReviews(ctx, ports.ReviewFilter{ArticleID: article.ArticleID})
	if err != nil {
		return RecommendationResult{}, err
	}
	roundReviews, aggregatedRound := services.NewReviewLedger(reviews).LatestRound(article.ReviewRound)
	aggregation := services.Aggregate(roundReviews)
	logger.Debug("recommendation computed",
		"event", "article_recommendation_computed",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", article.ArticleID,
		"recommendation", string(aggregation.Recommendation),
		"aggregated_round", aggregatedRound,
	)
	return RecommendationResult{
		ArticleID:       article.ArticleID,
		ReviewRound:     article.ReviewRound,
		AggregatedRound: aggregatedRound,
		Aggregation:     aggregation,
	}, nil
}

type ReviewerQueueUseCase struct {
	Reviews ports.ReviewRepository
	Users   ports.UserRepository
	Logger  *slog.Logger
}

// Execute lists the open reviews assigned to the calling reviewer.
func (uc ReviewerQueueUseCase) Execute(ctx context.Context, actorID string) ([]entities.Review, error) {
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != entities.RoleReviewer {
		return nil, domainerrors.ErrAuthorization
	}
	return uc.Reviews.ListReviews(ctx, ports.ReviewFilter{
		ReviewerID: actor.UserID,
		Statuses:   []entities.ReviewStatus{entities.ReviewStatusPending, entities.ReviewStatusInProgress},
	})
}
