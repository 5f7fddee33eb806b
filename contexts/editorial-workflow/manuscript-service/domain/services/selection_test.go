package services

import (
	"testing"
	"time"
)

func TestSelectReviewersPrefersLowestLoad(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []ReviewerCandidate{
		{UserID: "r1", CreatedAt: base, ActiveLoad: 0},
		{UserID: "r2", CreatedAt: base.Add(time.Hour), ActiveLoad: 1},
		{UserID: "r3", CreatedAt: base.Add(2 * time.Hour), ActiveLoad: 0},
		{UserID: "r4", CreatedAt: base.Add(3 * time.Hour), ActiveLoad: 2},
		{UserID: "r5", CreatedAt: base.Add(4 * time.Hour), ActiveLoad: 1},
	}

	got := SelectReviewers(candidates, 4)
	want := []string{"r1", "r3", "r2", "r5"}
	if len(got) != len(want) {
		t.Fatalf("expected %d reviewers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].UserID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i].UserID)
		}
	}
}

func TestSelectReviewersTieBreaksOnAgeThenID(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []ReviewerCandidate{
		{UserID: "b", CreatedAt: base},
		{UserID: "a", CreatedAt: base},
		{UserID: "c", CreatedAt: base.Add(-time.Hour)},
	}
	got := SelectReviewers(candidates, 3)
	if got[0].UserID != "c" || got[1].UserID != "a" || got[2].UserID != "b" {
		t.Fatalf("unexpected order: %v", got)
	}
	if SelectReviewers(candidates, 0) != nil {
		t.Fatalf("expected nil for zero slots")
	}
	if len(SelectReviewers(candidates, 10)) != 3 {
		t.Fatalf("expected selection capped at candidate count")
	}
}
