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

// RecordAPCPaymentCommand marks the article processing charge as settled.
// Amount overrides the quoted charge when positive.
type RecordAPCPaymentCommand struct {
	ActorID   string
	ArticleID string
	Amount    float64
}

type RecordAPCPaymentUseCase struct {
	Articles ports.ArticleRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc RecordAPCPaymentUseCase) Execute(ctx context.Context, cmd RecordAPCPaymentCommand) (entities.Article, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Article{}, err
	}
	if !services.Can(actor, services.ActionRecordPayment, services.AccessFacts{}) {
		return entities.Article{}, domainerrors.ErrAuthorization
	}
	if cmd.Amount < 0 {
		return entities.Article{}, fmt.Errorf("%w: amount must not be negative", domainerrors.ErrValidation)
	}
	article, err := uc.Articles.GetArticle(ctx, strings.TrimSpace(cmd.ArticleID))
	if err != nil {
		return entities.Article{}, err
	}
	if article.Status == entities.ArticleStatusRejected {
		return entities.Article{}, fmt.Errorf("%w: article was rejected", domainerrors.ErrInvalidTransition)
	}
	if article.IsAPCPaid {
		return article, nil
	}

	next := article
	next.IsAPCPaid = true
	if cmd.Amount > 0 {
		next.APCAmount = cmd.Amount
	}
	next.UpdatedAt = uc.Clock.Now().UTC()
	next.Version = article.Version + 1
	if err := uc.Articles.SaveArticle(ctx, ports.ArticleMutation{
		Article:         next,
		ExpectedVersion: article.Version,
	}); err != nil {
		return entities.Article{}, err
	}

	logger.Info("apc payment recorded",
		"event", "article_apc_paid",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", next.ArticleID,
		"actor_id", actor.UserID,
		"amount", next.APCAmount,
	)
	return next, nil
}
