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

type AssignIssueCommand struct {
	ActorID   string
	ArticleID string
	IssueID   string
}

type AssignIssueUseCase struct {
	Articles ports.ArticleRepository
	Journals ports.JournalRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc AssignIssueUseCase) Execute(ctx context.Context, cmd AssignIssueCommand) (entities.Article, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Article{}, err
	}
	if strings.TrimSpace(cmd.IssueID) == "" {
		return entities.Article{}, fmt.Errorf("%w: issue id is required", domainerrors.ErrValidation)
	}
	article, err := uc.Articles.GetArticle(ctx, strings.TrimSpace(cmd.ArticleID))
	if err != nil {
		return entities.Article{}, err
	}
	issue, err := uc.Journals.GetIssue(ctx, strings.TrimSpace(cmd.IssueID))
	if err != nil {
		return entities.Article{}, err
	}
	facts, err := access.ArticleFacts(ctx, actor, article)
	if err != nil {
		return entities.Article{}, err
	}

	now := uc.Clock.Now().UTC()
	binding, err := services.BindIssue(article, issue, actor, facts, now)
	if err != nil {
		logger.Warn("issue assignment rejected",
			"event", "article_issue_assign_rejected",
			"module", "editorial-workflow/manuscript-service",
			"layer", "application",
			"article_id", article.ArticleID,
			"issue_id", issue.IssueID,
			"actor_id", actor.UserID,
			"error", err.Error(),
		)
		return entities.Article{}, err
	}
	if binding.PreviousIssueID == issue.IssueID {
		return article, nil
	}

	auditID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Article{}, err
	}
	audit := entities.IssueAssignmentAudit{
		AuditID:         auditID,
		ArticleID:       article.ArticleID,
		PreviousIssueID: binding.PreviousIssueID,
		NewIssueID:      issue.IssueID,
		ActorID:         actor.UserID,
		ActorRole:       actor.Role,
		CreatedAt:       now,
	}
	event, err := newArticleEvent(ctx, uc.IDGen, contractsv1.EventArticleIssueAssigned, article.ArticleID, now, map[string]any{
		"article_id":        article.ArticleID,
		"journal_id":        article.JournalID,
		"issue_id":          issue.IssueID,
		"previous_issue_id": binding.PreviousIssueID,
		"volume":            issue.Volume,
		"issue_number":      issue.IssueNumber,
		"year":              issue.Year,
		"actor_id":          actor.UserID,
		"assigned_at":       now.Format(time.RFC3339),
	})
	if err != nil {
		return entities.Article{}, err
	}
	if err := uc.Articles.SaveArticle(ctx, ports.ArticleMutation{
		Article:         binding.Article,
		ExpectedVersion: article.Version,
		IssueAudit:      &audit,
		Events:          []ports.EventEnvelope{event},
	}); err != nil {
		return entities.Article{}, err
	}

	logger.Info("article issue assigned",
		"event", "article_issue_assigned",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"article_id", article.ArticleID,
		"issue_id", issue.IssueID,
		"previous_issue_id", binding.PreviousIssueID,
	)
	return binding.Article, nil
}
