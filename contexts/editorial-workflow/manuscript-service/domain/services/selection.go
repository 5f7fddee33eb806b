package services

import (
	"sort"
	"time"
)

// ReviewerCandidate is an active reviewer with their current open review load.
type ReviewerCandidate struct {
	UserID     string
	CreatedAt  time.Time
	ActiveLoad int
}

// SelectReviewers picks up to n candidates by ascending load, then account
// age (oldest first), then id. The order is total so the result is
// reproducible for the same input.
func SelectReviewers(candidates []ReviewerCandidate, n int) []ReviewerCandidate {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	ordered := append([]ReviewerCandidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ActiveLoad != ordered[j].ActiveLoad {
			return ordered[i].ActiveLoad < ordered[j].ActiveLoad
		}
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].UserID < ordered[j].UserID
	})
	if n > len(ordered) {
		n = len(ordered)
	}
	return ordered[:n]
}
