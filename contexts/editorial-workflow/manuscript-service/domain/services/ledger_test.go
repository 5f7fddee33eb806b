package services

import (
	"errors"
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

func reviewsFor(reviewerIDs ...string) []entities.Review {
	items := make([]entities.Review, 0, len(reviewerIDs))
	for i, id := range reviewerIDs {
		items = append(items, entities.Review{ReviewID: "review-" + id, ReviewerID: id, ReviewerNumber: i + 1})
	}
	return items
}

func TestLedgerPlanAssignsLowestFreeNumbers(t *testing.T) {
	ledger := NewReviewLedger([]entities.Review{
		{ReviewID: "r-2", ReviewerID: "reviewer-2", ReviewerNumber: 2},
	})
	numbers, err := ledger.Plan([]string{"reviewer-1", "reviewer-3"})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 3 {
		t.Fatalf("expected numbers [1 3], got %v", numbers)
	}
}

func TestLedgerPlanRejectsCapOverflow(t *testing.T) {
	ledger := NewReviewLedger(reviewsFor("a", "b", "c"))
	if _, err := ledger.Plan([]string{"d"}); err != nil {
		t.Fatalf("expected fourth reviewer to fit, got %v", err)
	}
	_, err := ledger.Plan([]string{"d", "e"})
	if !errors.Is(err, domainerrors.ErrReviewerCapExceeded) {
		t.Fatalf("expected cap error, got %v", err)
	}
	if ledger.Remaining() != 1 {
		t.Fatalf("expected one remaining slot, got %d", ledger.Remaining())
	}
}

func TestLedgerPlanRejectsDuplicates(t *testing.T) {
	ledger := NewReviewLedger(reviewsFor("a"))
	if _, err := ledger.Plan([]string{"a"}); !errors.Is(err, domainerrors.ErrDuplicateReviewer) {
		t.Fatalf("expected duplicate reviewer error for existing reviewer, got %v", err)
	}
	if _, err := ledger.Plan([]string{"b", "b"}); !errors.Is(err, domainerrors.ErrDuplicateReviewer) {
		t.Fatalf("expected duplicate reviewer error within request, got %v", err)
	}
	if _, err := ledger.Plan(nil); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error for empty request, got %v", err)
	}
}

func TestLedgerVerify(t *testing.T) {
	if err := NewReviewLedger(reviewsFor("a", "b", "c", "d")).Verify(); err != nil {
		t.Fatalf("expected full ledger to verify, got %v", err)
	}
	if err := NewReviewLedger(reviewsFor("a", "b", "c", "d", "e")).Verify(); !errors.Is(err, domainerrors.ErrReviewerCapExceeded) {
		t.Fatalf("expected cap error, got %v", err)
	}
	reused := []entities.Review{
		{ReviewerID: "a", ReviewerNumber: 1},
		{ReviewerID: "b", ReviewerNumber: 1},
	}
	if err := NewReviewLedger(reused).Verify(); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict for reused number, got %v", err)
	}
	twice := []entities.Review{
		{ReviewerID: "a", ReviewerNumber: 1},
		{ReviewerID: "a", ReviewerNumber: 2},
	}
	if err := NewReviewLedger(twice).Verify(); !errors.Is(err, domainerrors.ErrDuplicateReviewer) {
		t.Fatalf("expected duplicate reviewer, got %v", err)
	}
}

func TestLedgerLatestRoundFallsBackToStaffedRound(t *testing.T) {
	ledger := NewReviewLedger([]entities.Review{
		{ReviewID: "a", ReviewerID: "r1", ReviewerNumber: 1, Round: 1},
		{ReviewID: "b", ReviewerID: "r2", ReviewerNumber: 2, Round: 1},
	})
	reviews, round := ledger.LatestRound(2)
	if round != 1 || len(reviews) != 2 {
		t.Fatalf("expected round 1 with 2 reviews, got round %d with %d", round, len(reviews))
	}

	ledger = NewReviewLedger(append(ledger.Reviews, entities.Review{ReviewID: "c", ReviewerID: "r3", ReviewerNumber: 3, Round: 2}))
	reviews, round = ledger.LatestRound(2)
	if round != 2 || len(reviews) != 1 || reviews[0].ReviewID != "c" {
		t.Fatalf("expected round 2 with review c, got round %d with %+v", round, reviews)
	}

	reviews, round = NewReviewLedger(nil).LatestRound(1)
	if round != 1 || len(reviews) != 0 {
		t.Fatalf("expected empty round 1, got round %d with %d", round, len(reviews))
	}
}
