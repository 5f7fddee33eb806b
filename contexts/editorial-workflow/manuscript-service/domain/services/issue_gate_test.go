package services

import (
	"errors"
	"testing"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

func TestBindIssueLocksAfterFirstBinding(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	editor := entities.Principal{UserID: "editor-1", Role: entities.RoleEditor}
	super := entities.Principal{UserID: "super-1", Role: entities.RoleSuperAdmin}
	facts := AccessFacts{JournalID: "journal-1", EditorJournalIDs: []string{"journal-1"}}
	first := entities.Issue{IssueID: "issue-1", JournalID: "journal-1"}
	second := entities.Issue{IssueID: "issue-2", JournalID: "journal-1"}

	article := articleIn(entities.ArticleStatusAccepted)
	binding, err := BindIssue(article, first, editor, facts, now)
	if err != nil {
		t.Fatalf("first binding failed: %v", err)
	}
	if binding.Article.IssueID != "issue-1" || binding.PreviousIssueID != "" {
		t.Fatalf("unexpected binding: %+v", binding)
	}

	if _, err := BindIssue(binding.Article, second, editor, facts, now); !errors.Is(err, domainerrors.ErrIssueLocked) {
		t.Fatalf("expected issue locked for editor, got %v", err)
	}

	override, err := BindIssue(binding.Article, second, super, AccessFacts{JournalID: "journal-1"}, now)
	if err != nil {
		t.Fatalf("super admin override failed: %v", err)
	}
	if override.PreviousIssueID != "issue-1" || override.Article.IssueID != "issue-2" {
		t.Fatalf("unexpected override: %+v", override)
	}
}

func TestBindIssueChecksStatusAndJournal(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	super := entities.Principal{UserID: "super-1", Role: entities.RoleSuperAdmin}
	issue := entities.Issue{IssueID: "issue-1", JournalID: "journal-1"}

	if _, err := BindIssue(articleIn(entities.ArticleStatusUnderReview), issue, super, AccessFacts{}, now); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	foreign := entities.Issue{IssueID: "issue-9", JournalID: "journal-9"}
	if _, err := BindIssue(articleIn(entities.ArticleStatusPublished), foreign, super, AccessFacts{}, now); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	author := entities.Principal{UserID: "author-1", Role: entities.RoleAuthor}
	if _, err := BindIssue(articleIn(entities.ArticleStatusAccepted), issue, author, AccessFacts{}, now); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}
