package queries

import (
	"context"
	"log/slog"
	"strings"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type GetArticleUseCase struct {
	Articles ports.ArticleRepository
	Reviews  ports.ReviewRepository
	Users    ports.UserRepository
	Logger   *slog.Logger
}

func (uc GetArticleUseCase) Execute(ctx context.Context, actorID string, articleID string) (entities.Article, error) {
	_, article, err := loadVisibleArticle(ctx, application.AccessResolver{Users: uc.Users, Reviews: uc.Reviews}, uc.Articles, actorID, articleID)
	return article, err
}

func loadVisibleArticle(
	ctx context.Context,
	access application.AccessResolver,
	articles ports.ArticleRepository,
	actorID string,
	articleID string,
) (entities.Principal, entities.Article, error) {
	actor, err := access.Principal(ctx, actorID)
	if err != nil {
		return entities.Principal{}, entities.Article{}, err
	}
	article, err := articles.GetArticle(ctx, strings.TrimSpace(articleID))
	if err != nil {
		return entities.Principal{}, entities.Article{}, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return entities.Principal{}, entities.Article{}, err
	}
	if !services.Can(actor, services.ActionViewArticle, facts) {
		return entities.Principal{}, entities.Article{}, domainerrors.ErrAuthorization
	}
	return actor, article, nil
}

type ListArticlesQuery struct {
	ActorID   string
	JournalID string
	Status    string
	Limit     int
	Offset    int
}

type ListArticlesUseCase struct {
	Articles ports.ArticleRepository
	Reviews  ports.ReviewRepository
	Users    ports.UserRepository
	Logger   *slog.Logger
}

// Execute scopes the listing to what the actor may see: admins see every
// journal, editors their bound journals, reviewers the articles they review
// and authors their own submissions.
func (uc ListArticlesUseCase) Execute(ctx context.Context, query ListArticlesQuery) ([]entities.Article, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, query.ActorID)
	if err != nil {
		return nil, err
	}
	filter := ports.ArticleFilter{
		Status: entities.ArticleStatus(strings.TrimSpace(query.Status)),
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if journalID := strings.TrimSpace(query.JournalID); journalID != "" {
		filter.JournalIDs = []string{journalID}
	}

	switch {
	case actor.Role.IsAdmin():
	case actor.Role.IsEditorial():
		bound, err := uc.Users.ListEditorJournals(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.JournalIDs = intersectJournals(filter.JournalIDs, bound)
		if len(filter.JournalIDs) == 0 {
			return []entities.Article{}, nil
		}
	case actor.Role == entities.RoleReviewer:
		reviews, err := uc.Reviews.ListReviews(ctx, ports.ReviewFilter{ReviewerID: actor.UserID})
		if err != nil {
			return nil, err
		}
		for _, review := range reviews {
			filter.ArticleIDs = append(filter.ArticleIDs, review.ArticleID)
		}
		if len(filter.ArticleIDs) == 0 {
			return []entities.Article{}, nil
		}
	default:
		filter.AuthorID = actor.UserID
	}

	items, err := uc.Articles.ListArticles(ctx, filter)
	if err != nil {
		return nil, err
	}
	logger.Debug("articles listed",
		"event", "articles_listed",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"actor_id", actor.UserID,
		"count", len(items),
	)
	return items, nil
}

// intersectJournals narrows requested to bound; an empty request means all
// bound journals.
func intersectJournals(requested []string, bound []string) []string {
	if len(requested) == 0 {
		return bound
	}
	allowed := make(map[string]struct{}, len(bound))
	for _, journalID := range bound {
		allowed[journalID] = struct{}{}
	}
	items := make([]string, 0, len(requested))
	for _, journalID := range requested {
		if _, ok := allowed[journalID]; ok {
			items = append(items, journalID)
		}
	}
	return items
}

type HistoryUseCase struct {
	Articles ports.ArticleRepository
	Reviews  ports.ReviewRepository
	Users    ports.UserRepository
	Logger   *slog.Logger
}

func (uc HistoryUseCase) Execute(ctx context.Context, actorID string, articleID string) ([]entities.StatusTransition, error) {
	_, article, err := loadVisibleArticle(ctx, application.AccessResolver{Users: uc.Users, Reviews: uc.Reviews}, uc.Articles, actorID, articleID)
	if err != nil {
		return nil, err
	}
	return uc.Articles.ListTransitions(ctx, article.ArticleID)
}
