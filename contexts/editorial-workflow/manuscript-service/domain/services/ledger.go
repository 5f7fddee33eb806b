package services

import (
	"fmt"
	"strings"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

// ReviewLedger is the set of reviews attached to one article. Persistence
// adapters rebuild it inside their write transaction and re-run Plan so the
// cap and uniqueness checks hold under concurrent assignment.
type ReviewLedger struct {
	Reviews []entities.Review
}

func NewReviewLedger(reviews []entities.Review) ReviewLedger {
	return ReviewLedger{Reviews: reviews}
}

func (l ReviewLedger) Count() int {
	return len(l.Reviews)
}

func (l ReviewLedger) Remaining() int {
	remaining := entities.MaxReviewersPerArticle - len(l.Reviews)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l ReviewLedger) HasReviewer(reviewerID string) bool {
	for _, review := range l.Reviews {
		if review.ReviewerID == reviewerID {
			return true
		}
	}
	return false
}

func (l ReviewLedger) ReviewerIDs() []string {
	items := make([]string, 0, len(l.Reviews))
	for _, review := range l.Reviews {
		items = append(items, review.ReviewerID)
	}
	return items
}

// FreeNumbers returns the lowest n reviewer numbers not yet used.
func (l ReviewLedger) FreeNumbers(n int) []int {
	used := make(map[int]struct{}, len(l.Reviews))
	for _, review := range l.Reviews {
		used[review.ReviewerNumber] = struct{}{}
	}
	numbers := make([]int, 0, n)
	for candidate := 1; candidate <= entities.MaxReviewersPerArticle && len(numbers) < n; candidate++ {
		if _, taken := used[candidate]; !taken {
			numbers = append(numbers, candidate)
		}
	}
	return numbers
}

// Plan validates adding reviewerIDs and returns the reviewer number each one
// receives, in order.
func (l ReviewLedger) Plan(reviewerIDs []string) ([]int, error) {
	if len(reviewerIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one reviewer is required", domainerrors.ErrValidation)
	}
	if l.Count()+len(reviewerIDs) > entities.MaxReviewersPerArticle {
		return nil, fmt.Errorf("%w: %d assigned, %d requested, cap %d",
			domainerrors.ErrReviewerCapExceeded, l.Count(), len(reviewerIDs), entities.MaxReviewersPerArticle)
	}
	seen := make(map[string]struct{}, len(reviewerIDs))
	for _, reviewerID := range reviewerIDs {
		id := strings.TrimSpace(reviewerID)
		if id == "" {
			return nil, fmt.Errorf("%w: reviewer id is required", domainerrors.ErrValidation)
		}
		if _, dup := seen[id]; dup || l.HasReviewer(id) {
			return nil, fmt.Errorf("%w: %s", domainerrors.ErrDuplicateReviewer, id)
		}
		seen[id] = struct{}{}
	}
	numbers := l.FreeNumbers(len(reviewerIDs))
	if len(numbers) != len(reviewerIDs) {
		return nil, domainerrors.ErrReviewerCapExceeded
	}
	return numbers, nil
}

// Verify checks that a full set of reviews satisfies the ledger invariants.
func (l ReviewLedger) Verify() error {
	if l.Count() > entities.MaxReviewersPerArticle {
		return domainerrors.ErrReviewerCapExceeded
	}
	numbers := make(map[int]struct{}, len(l.Reviews))
	reviewers := make(map[string]struct{}, len(l.Reviews))
	for _, review := range l.Reviews {
		if review.ReviewerNumber < 1 || review.ReviewerNumber > entities.MaxReviewersPerArticle {
			return fmt.Errorf("%w: reviewer number %d out of range", domainerrors.ErrValidation, review.ReviewerNumber)
		}
		if _, dup := numbers[review.ReviewerNumber]; dup {
			return fmt.Errorf("%w: reviewer number %d reused", domainerrors.ErrConflict, review.ReviewerNumber)
		}
		if _, dup := reviewers[review.ReviewerID]; dup {
			return fmt.Errorf("%w: %s", domainerrors.ErrDuplicateReviewer, review.ReviewerID)
		}
		numbers[review.ReviewerNumber] = struct{}{}
		reviewers[review.ReviewerID] = struct{}{}
	}
	return nil
}

// CurrentRound returns the reviews assigned in the given round.
func (l ReviewLedger) CurrentRound(round int) []entities.Review {
	items := make([]entities.Review, 0, len(l.Reviews))
	for _, review := range l.Reviews {
		if review.Round == round {
			items = append(items, review)
		}
	}
	return items
}

// LatestRound returns the reviews of the highest round, at most upTo, that
// has any reviews, together with that round. Resubmitted articles keep their
// earlier reviewers, so their verdicts stay in the latest staffed round.
func (l ReviewLedger) LatestRound(upTo int) ([]entities.Review, int) {
	latest := 0
	for _, review := range l.Reviews {
		if review.Round <= upTo && review.Round > latest {
			latest = review.Round
		}
	}
	if latest == 0 {
		return []entities.Review{}, upTo
	}
	return l.CurrentRound(latest), latest
}
