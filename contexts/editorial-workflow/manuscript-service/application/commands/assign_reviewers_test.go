package commands

import (
	"errors"
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

func TestAssignReviewersMovesSubmittedToUnderReview(t *testing.T) {
	f := newFixture(t, 2)
	article := f.submit("author-1")

	result := f.assign(article.ArticleID, "reviewer-1", "reviewer-2")
	if result.Article.Status != entities.ArticleStatusUnderReview {
		t.Fatalf("expected under_review, got %s", result.Article.Status)
	}
	if len(result.Reviews) != 2 {
		t.Fatalf("expected two reviews, got %d", len(result.Reviews))
	}
	for i, review := range result.Reviews {
		if review.ReviewerNumber != i+1 || review.Status != entities.ReviewStatusPending || review.Round != 1 {
			t.Fatalf("unexpected review %d: %+v", i, review)
		}
		if !review.DueDate.Equal(fixtureEpoch.Add(DefaultReviewPeriod)) {
			t.Fatalf("expected due date four weeks out, got %s", review.DueDate)
		}
	}
}

func TestAssignReviewersEnforcesCapAndUniqueness(t *testing.T) {
	f := newFixture(t, 6)
	article := f.submit("author-1")
	f.assign(article.ArticleID, "reviewer-1", "reviewer-2", "reviewer-3")

	_, err := f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{
		ActorID: "editor-1", ArticleID: article.ArticleID, ReviewerIDs: []string{"reviewer-4", "reviewer-5"},
	})
	if !errors.Is(err, domainerrors.ErrReviewerCapExceeded) {
		t.Fatalf("expected cap error, got %v", err)
	}
	_, err = f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{
		ActorID: "editor-1", ArticleID: article.ArticleID, ReviewerIDs: []string{"reviewer-2"},
	})
	if !errors.Is(err, domainerrors.ErrDuplicateReviewer) {
		t.Fatalf("expected duplicate reviewer error, got %v", err)
	}

	fourth := f.assign(article.ArticleID, "reviewer-4")
	if fourth.Reviews[0].ReviewerNumber != 4 {
		t.Fatalf("expected reviewer number 4, got %d", fourth.Reviews[0].ReviewerNumber)
	}
	if _, err := f.autoAssignUseCase().Execute(f.ctx, AutoAssignReviewersCommand{ActorID: "editor-1", ArticleID: article.ArticleID}); !errors.Is(err, domainerrors.ErrReviewerCapExceeded) {
		t.Fatalf("expected auto assignment on a full ledger to fail, got %v", err)
	}

	reviews, err := f.store.ListReviews(f.ctx, portsReviewFilter(article.ArticleID))
	if err != nil {
		t.Fatalf("list reviews failed: %v", err)
	}
	if len(reviews) != entities.MaxReviewersPerArticle {
		t.Fatalf("expected %d reviews, got %d", entities.MaxReviewersPerArticle, len(reviews))
	}
}

func TestAssignReviewersChecksActorAndEligibility(t *testing.T) {
	f := newFixture(t, 1)
	article := f.submit("author-1")

	_, err := f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{
		ActorID: "editor-2", ArticleID: article.ArticleID, ReviewerIDs: []string{"reviewer-1"},
	})
	if !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected unbound editor to be denied, got %v", err)
	}
	_, err = f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{
		ActorID: "editor-1", ArticleID: article.ArticleID, ReviewerIDs: []string{"author-2"},
	})
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected non-reviewer to be rejected, got %v", err)
	}
	_, err = f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{
		ActorID: "super-1", ArticleID: article.ArticleID, ReviewerIDs: []string{"reviewer-1"},
	})
	if err != nil {
		t.Fatalf("expected super admin assignment to succeed, got %v", err)
	}
}

func TestAutoAssignPrefersLeastLoadedReviewers(t *testing.T) {
	f := newFixture(t, 5)
	target := f.submit("author-1")
	busyA := f.submit("author-1")
	busyB := f.submit("author-2")

	// Loads become reviewer-1..5 = [0, 1, 0, 2, 1].
	f.assign(busyA.ArticleID, "reviewer-2", "reviewer-4")
	f.assign(busyB.ArticleID, "reviewer-4", "reviewer-5")

	result, err := f.autoAssignUseCase().Execute(f.ctx, AutoAssignReviewersCommand{ActorID: "editor-1", ArticleID: target.ArticleID})
	if err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}
	want := []string{"reviewer-1", "reviewer-3", "reviewer-2", "reviewer-5"}
	if len(result.Reviews) != len(want) {
		t.Fatalf("expected %d reviews, got %d", len(want), len(result.Reviews))
	}
	for i, review := range result.Reviews {
		if review.ReviewerID != want[i] || review.ReviewerNumber != i+1 {
			t.Fatalf("position %d: expected %s #%d, got %s #%d", i, want[i], i+1, review.ReviewerID, review.ReviewerNumber)
		}
	}
	if result.Article.Status != entities.ArticleStatusUnderReview {
		t.Fatalf("expected under_review, got %s", result.Article.Status)
	}
}

func TestAutoAssignReplaysAndNeedsReviewers(t *testing.T) {
	f := newFixture(t, 0)
	f.addUser("reviewer-a", entities.RoleReviewer, fixtureEpoch)
	f.addUser("reviewer-b", entities.RoleReviewer, fixtureEpoch)
	article := f.submit("author-1")

	cmd := AutoAssignReviewersCommand{ActorID: "editor-1", ArticleID: article.ArticleID, IdempotencyKey: "auto-1"}
	first, err := f.autoAssignUseCase().Execute(f.ctx, cmd)
	if err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}
	if len(first.Reviews) != 2 {
		t.Fatalf("expected both reviewers, got %d", len(first.Reviews))
	}
	replay, err := f.autoAssignUseCase().Execute(f.ctx, cmd)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Replayed || len(replay.Reviews) != 2 {
		t.Fatalf("expected replayed result, got %+v", replay)
	}

	empty := newFixture(t, 0)
	lonely := empty.submit("author-1")
	_, err = empty.autoAssignUseCase().Execute(empty.ctx, AutoAssignReviewersCommand{ActorID: "editor-1", ArticleID: lonely.ArticleID})
	if !errors.Is(err, domainerrors.ErrNoEligibleReviewers) {
		t.Fatalf("expected no eligible reviewers, got %v", err)
	}
}
