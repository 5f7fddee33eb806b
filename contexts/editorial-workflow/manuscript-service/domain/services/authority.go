package services

import (
	"strings"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
)

// Action is a mutation or privileged read gated by the role authority.
type Action string

const (
	ActionSubmitArticle   Action = "article.submit"
	ActionResubmitArticle Action = "article.resubmit"
	ActionViewArticle     Action = "article.view"
	ActionAssignReviewers Action = "article.assign_reviewers"
	ActionDecide          Action = "article.decide"
	ActionPublish         Action = "article.publish"
	ActionBypassPayment   Action = "article.bypass_payment"
	ActionRecordPayment   Action = "article.record_payment"
	ActionAssignIssue     Action = "article.assign_issue"
	ActionOverrideIssue   Action = "article.override_issue"
	ActionActOnReview     Action = "review.act"
	ActionViewAllReviews  Action = "review.view_all"
	ActionCreateIssue     Action = "journal.create_issue"
	ActionCreateJournal   Action = "journal.create"
	ActionBindEditor      Action = "journal.bind_editor"
)

// AccessFacts are the ownership and relationship facts an authorization
// decision depends on. Callers fill only what the action needs.
type AccessFacts struct {
	ArticleAuthorID     string
	JournalID           string
	EditorJournalIDs    []string
	ReviewerID          string
	AssignedReviewerIDs []string
}

func (f AccessFacts) editsJournal() bool {
	journalID := strings.TrimSpace(f.JournalID)
	if journalID == "" {
		return false
	}
	for _, item := range f.EditorJournalIDs {
		if strings.TrimSpace(item) == journalID {
			return true
		}
	}
	return false
}

func (f AccessFacts) isAssignedReviewer(userID string) bool {
	for _, item := range f.AssignedReviewerIDs {
		if item == userID {
			return true
		}
	}
	return false
}

// Can answers whether actor may perform action given facts. It has no state
// and every role/action pair is decided explicitly.
func Can(actor entities.Principal, action Action, facts AccessFacts) bool {
	if !actor.Valid() {
		return false
	}
	owner := strings.TrimSpace(facts.ArticleAuthorID) != "" && facts.ArticleAuthorID == actor.UserID

	switch action {
	case ActionSubmitArticle:
		return actor.Role == entities.RoleAuthor && owner
	case ActionResubmitArticle:
		return actor.Role == entities.RoleAuthor && owner
	case ActionViewArticle:
		switch actor.Role {
		case entities.RoleMotherAdmin, entities.RoleSuperAdmin:
			return true
		case entities.RoleEditor, entities.RoleSubEditor:
			return facts.editsJournal()
		case entities.RoleReviewer:
			return facts.isAssignedReviewer(actor.UserID)
		case entities.RoleAuthor:
			return owner
		}
		return false
	case ActionAssignReviewers, ActionDecide, ActionPublish, ActionAssignIssue, ActionCreateIssue, ActionViewAllReviews:
		switch actor.Role {
		case entities.RoleMotherAdmin, entities.RoleSuperAdmin:
			return true
		case entities.RoleEditor, entities.RoleSubEditor:
			return facts.editsJournal()
		}
		return false
	case ActionBypassPayment:
		return actor.Role == entities.RoleMotherAdmin
	case ActionRecordPayment, ActionOverrideIssue, ActionCreateJournal, ActionBindEditor:
		return actor.Role.IsAdmin()
	case ActionActOnReview:
		return actor.Role == entities.RoleReviewer &&
			strings.TrimSpace(facts.ReviewerID) != "" &&
			facts.ReviewerID == actor.UserID
	default:
		return false
	}
}

// CanAssignRole applies the role-mutation matrix. currentRole is empty when
// the target account is being created.
func CanAssignRole(actor entities.Principal, targetUserID string, currentRole entities.Role, newRole entities.Role) bool {
	if !actor.Valid() || !newRole.Valid() {
		return false
	}
	if strings.TrimSpace(targetUserID) != "" && targetUserID == actor.UserID {
		return false
	}

	switch actor.Role {
	case entities.RoleMotherAdmin:
		return true
	case entities.RoleSuperAdmin:
		return !currentRole.IsAdmin() && !newRole.IsAdmin()
	case entities.RoleEditor:
		return newRole == entities.RoleSubEditor && currentRole.Rank() <= entities.RoleSubEditor.Rank()
	default:
		return false
	}
}
