package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

// ResubmitArticleCommand carries the revised manuscript. Empty fields keep
// the current value; a non-nil CoAuthors replaces the list.
type ResubmitArticleCommand struct {
	ActorID     string
	ArticleID   string
	Title       string
	Abstract    string
	Keywords    []string
	ArticleType string
	CoAuthors   []entities.CoAuthor
	Notes       string
}

type ResubmitArticleUseCase struct {
	Articles ports.ArticleRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc ResubmitArticleUseCase) Execute(ctx context.Context, cmd ResubmitArticleCommand) (entities.Article, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Article{}, err
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
		Actor:  actor,
		Facts:  facts,
		Target: entities.ArticleStatusResubmitted,
		Now:    uc.Clock.Now(),
	})
	if err != nil {
		return entities.Article{}, err
	}
	if title := strings.TrimSpace(cmd.Title); title != "" {
		next.Title = title
	}
	if abstract := strings.TrimSpace(cmd.Abstract); abstract != "" {
		next.Abstract = abstract
	}
	if cmd.Keywords != nil {
		next.Keywords = entities.NormalizeKeywords(cmd.Keywords)
	}
	if articleType := strings.TrimSpace(cmd.ArticleType); articleType != "" {
		next.ArticleType = articleType
	}
	if cmd.CoAuthors != nil {
		next.CoAuthors = normalizeCoAuthors(cmd.CoAuthors)
	}
	if err := services.ValidateManuscript(next); err != nil {
		return entities.Article{}, err
	}

	transition, event, err := statusChangeRecord(ctx, uc.IDGen, next, change, actor, strings.TrimSpace(cmd.Notes))
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

	logger.Info("article resubmitted",
		"event", "article_resubmitted",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", next.ArticleID,
		"review_round", next.ReviewRound,
	)
	return next, nil
}
