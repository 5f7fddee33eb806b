package services

import (
	"fmt"
	"strings"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

// IssueBinding is the outcome of a successful issue assignment.
type IssueBinding struct {
	Article         entities.Article
	PreviousIssueID string
}

// BindIssue applies the one-time issue lock. The first binding is open to
// the article's editors; any later change needs an admin override.
func BindIssue(article entities.Article, issue entities.Issue, actor entities.Principal, facts AccessFacts, now time.Time) (IssueBinding, error) {
	if !Can(actor, ActionAssignIssue, facts) {
		return IssueBinding{}, domainerrors.ErrAuthorization
	}
	if !article.Status.AcceptsIssue() {
		return IssueBinding{}, fmt.Errorf("%w: issue binding requires accepted or published status, got %s",
			domainerrors.ErrInvalidTransition, article.Status)
	}
	if issue.JournalID != article.JournalID {
		return IssueBinding{}, fmt.Errorf("%w: issue belongs to another journal", domainerrors.ErrValidation)
	}
	if article.HasIssue() && !Can(actor, ActionOverrideIssue, facts) {
		return IssueBinding{}, domainerrors.ErrIssueLocked
	}

	previous := strings.TrimSpace(article.IssueID)
	next := article
	next.IssueID = issue.IssueID
	next.UpdatedAt = now.UTC()
	next.Version = article.Version + 1
	return IssueBinding{Article: next, PreviousIssueID: previous}, nil
}
