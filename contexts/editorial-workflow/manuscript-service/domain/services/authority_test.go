package services

import (
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
)

func TestCanAssignRoleMatrix(t *testing.T) {
	mother := entities.Principal{UserID: "mother-1", Role: entities.RoleMotherAdmin}
	super := entities.Principal{UserID: "super-1", Role: entities.RoleSuperAdmin}
	editor := entities.Principal{UserID: "editor-1", Role: entities.RoleEditor}
	subEditor := entities.Principal{UserID: "sub-1", Role: entities.RoleSubEditor}

	cases := []struct {
		name    string
		actor   entities.Principal
		target  string
		current entities.Role
		next    entities.Role
		want    bool
	}{
		{"mother promotes to super admin", mother, "user-1", entities.RoleAuthor, entities.RoleSuperAdmin, true},
		{"mother demotes super admin", mother, "user-1", entities.RoleSuperAdmin, entities.RoleReviewer, true},
		{"mother cannot change self", mother, "mother-1", entities.RoleMotherAdmin, entities.RoleEditor, false},
		{"super creates editor", super, "", "", entities.RoleEditor, true},
		{"super cannot create super admin", super, "", "", entities.RoleSuperAdmin, false},
		{"super cannot demote mother admin", super, "user-1", entities.RoleMotherAdmin, entities.RoleAuthor, false},
		{"editor creates sub editor", editor, "", "", entities.RoleSubEditor, true},
		{"editor promotes reviewer to sub editor", editor, "user-1", entities.RoleReviewer, entities.RoleSubEditor, true},
		{"editor cannot create editor", editor, "", "", entities.RoleEditor, false},
		{"editor cannot touch another editor", editor, "user-1", entities.RoleEditor, entities.RoleSubEditor, false},
		{"sub editor assigns nothing", subEditor, "", "", entities.RoleReviewer, false},
		{"unknown role never assignable", mother, "user-1", entities.RoleAuthor, entities.Role("dean"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAssignRole(tc.actor, tc.target, tc.current, tc.next); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanArticleActions(t *testing.T) {
	author := entities.Principal{UserID: "author-1", Role: entities.RoleAuthor}
	otherAuthor := entities.Principal{UserID: "author-2", Role: entities.RoleAuthor}
	editor := entities.Principal{UserID: "editor-1", Role: entities.RoleEditor}
	reviewer := entities.Principal{UserID: "reviewer-1", Role: entities.RoleReviewer}
	super := entities.Principal{UserID: "super-1", Role: entities.RoleSuperAdmin}
	mother := entities.Principal{UserID: "mother-1", Role: entities.RoleMotherAdmin}

	bound := AccessFacts{ArticleAuthorID: "author-1", JournalID: "journal-1", EditorJournalIDs: []string{"journal-1"}}
	unbound := AccessFacts{ArticleAuthorID: "author-1", JournalID: "journal-1", EditorJournalIDs: []string{"journal-2"}}

	if !Can(author, ActionResubmitArticle, bound) {
		t.Fatalf("expected owner to resubmit")
	}
	if Can(otherAuthor, ActionResubmitArticle, bound) {
		t.Fatalf("expected non-owner resubmit to be denied")
	}
	if !Can(editor, ActionDecide, bound) {
		t.Fatalf("expected bound editor to decide")
	}
	if Can(editor, ActionDecide, unbound) {
		t.Fatalf("expected unbound editor decision to be denied")
	}
	if Can(reviewer, ActionDecide, bound) {
		t.Fatalf("expected reviewer decision to be denied")
	}
	if !Can(super, ActionDecide, unbound) {
		t.Fatalf("expected super admin to decide on any journal")
	}
	if Can(super, ActionBypassPayment, bound) || !Can(mother, ActionBypassPayment, bound) {
		t.Fatalf("expected payment bypass to be mother_admin only")
	}
	if !Can(reviewer, ActionActOnReview, AccessFacts{ReviewerID: "reviewer-1"}) {
		t.Fatalf("expected assigned reviewer to act on review")
	}
	if Can(reviewer, ActionActOnReview, AccessFacts{ReviewerID: "reviewer-2"}) {
		t.Fatalf("expected other reviewer to be denied")
	}
	if Can(mother, ActionActOnReview, AccessFacts{ReviewerID: "mother-1"}) {
		t.Fatalf("expected non-reviewer roles to be denied review actions")
	}
	if !Can(reviewer, ActionViewArticle, AccessFacts{AssignedReviewerIDs: []string{"reviewer-1"}}) {
		t.Fatalf("expected assigned reviewer to view article")
	}
	if Can(entities.Principal{UserID: "x", Role: entities.Role("guest")}, ActionViewArticle, bound) {
		t.Fatalf("expected invalid principal to be denied")
	}
	if Can(mother, Action("article.unknown"), bound) {
		t.Fatalf("expected unknown action to be denied")
	}
}
