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
)

const operationSubmitArticle = "article.submit"

type SubmitArticleCommand struct {
	ActorID        string
	IdempotencyKey string
	JournalID      string
	Title          string
	Abstract       string
	Keywords       []string
	ArticleType    string
	APCAmount      float64
	CoAuthors      []entities.CoAuthor
}

type SubmitArticleResult struct {
	Article  entities.Article
	Replayed bool
}

type SubmitArticleUseCase struct {
	Articles       ports.ArticleRepository
	Journals       ports.JournalRepository
	Users          ports.UserRepository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (uc SubmitArticleUseCase) Execute(ctx context.Context, cmd SubmitArticleCommand) (SubmitArticleResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return SubmitArticleResult{}, err
	}
	if !services.Can(actor, services.ActionSubmitArticle, services.AccessFacts{ArticleAuthorID: actor.UserID}) {
		logger.Warn("article submission denied",
			"event", "article_submit_denied",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"actor_id", actor.UserID,
			"actor_role", string(actor.Role),
		)
		return SubmitArticleResult{}, domainerrors.ErrAuthorization
	}

	now := uc.Clock.Now().UTC()
	key := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := ""
	if key != "" && uc.Idempotency != nil {
		requestHash, err = hashRequest(cmd)
		if err != nil {
			return SubmitArticleResult{}, err
		}
		key = scopedKey(operationSubmitArticle, actor.UserID, key)
		var replay entities.Article
		found, err := loadReplay(ctx, uc.Idempotency, key, requestHash, now, &replay)
		if err != nil {
			return SubmitArticleResult{}, err
		}
		if found {
			return SubmitArticleResult{Article: replay, Replayed: true}, nil
		}
	}

	articleID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitArticleResult{}, err
	}
	article := entities.Article{
		ArticleID:   articleID,
		JournalID:   strings.TrimSpace(cmd.JournalID),
		AuthorID:    actor.UserID,
		Title:       strings.TrimSpace(cmd.Title),
		Abstract:    strings.TrimSpace(cmd.Abstract),
		Keywords:    entities.NormalizeKeywords(cmd.Keywords),
		ArticleType: strings.TrimSpace(cmd.ArticleType),
		Status:      entities.ArticleStatusSubmitted,
		APCAmount:   cmd.APCAmount,
		ReviewRound: 1,
		CoAuthors:   normalizeCoAuthors(cmd.CoAuthors),
		Version:     1,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := services.ValidateManuscript(article); err != nil {
		return SubmitArticleResult{}, err
	}
	if _, err := uc.Journals.GetJournal(ctx, article.JournalID); err != nil {
		if errors.Is(err, domainerrors.ErrJournalNotFound) {
			return SubmitArticleResult{}, fmt.Errorf("%w: journal %s does not exist", domainerrors.ErrValidation, article.JournalID)
		}
		return SubmitArticleResult{}, err
	}

	transition, event, err := statusChangeRecord(ctx, uc.IDGen, article, services.StatusChange{
		To: entities.ArticleStatusSubmitted,
		At: now,
	}, actor, "")
	if err != nil {
		return SubmitArticleResult{}, err
	}
	if err := uc.Articles.CreateArticle(ctx, article, transition, []ports.EventEnvelope{event}); err != nil {
		logger.Error("article submission failed",
			"event", "article_submit_failed",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"article_id", article.ArticleID,
			"error", err.Error(),
		)
		return SubmitArticleResult{}, err
	}

	if requestHash != "" {
		recordReplay(ctx, logger, uc.Idempotency, operationSubmitArticle, key, requestHash, now, uc.IdempotencyTTL, article)
	}

	logger.Info("article submitted",
		"event", "article_submitted",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", article.ArticleID,
		"journal_id", article.JournalID,
		"author_id", article.AuthorID,
	)
	return SubmitArticleResult{Article: article}, nil
}

func normalizeCoAuthors(items []entities.CoAuthor) []entities.CoAuthor {
	if items == nil {
		return nil
	}
	out := make([]entities.CoAuthor, 0, len(items))
	for _, item := range items {
		out = append(out, entities.CoAuthor{
			Name:       strings.TrimSpace(item.Name),
			Email:      strings.ToLower(strings.TrimSpace(item.Email)),
			University: strings.TrimSpace(item.University),
		})
	}
	return out
}
