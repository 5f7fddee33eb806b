package services

import (
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
)

func completed(decision entities.ReviewDecision) entities.Review {
	return entities.Review{Status: entities.ReviewStatusCompleted, Decision: decision}
}

func TestAggregateRecommendations(t *testing.T) {
	pending := entities.Review{Status: entities.ReviewStatusPending}
	declined := entities.Review{Status: entities.ReviewStatusDeclined}

	cases := []struct {
		name      string
		reviews   []entities.Review
		want      Recommendation
		allDone   bool
		unanimous bool
	}{
		{"no reviews", nil, RecommendationInsufficientData, false, false},
		{"nothing completed", []entities.Review{pending, pending}, RecommendationInsufficientData, false, false},
		{"any reject wins", []entities.Review{completed(entities.ReviewDecisionAccept), completed(entities.ReviewDecisionReject)}, RecommendationRejectSuggested, true, false},
		{"unanimous accept", []entities.Review{completed(entities.ReviewDecisionAccept), completed(entities.ReviewDecisionAccept), declined}, RecommendationAutoAcceptEligible, true, true},
		{"accept with open review", []entities.Review{completed(entities.ReviewDecisionAccept), pending}, RecommendationRevisionSuggested, false, false},
		{"revision asked", []entities.Review{completed(entities.ReviewDecisionAccept), completed(entities.ReviewDecisionRevisionRequested)}, RecommendationRevisionSuggested, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(tc.reviews)
			if got.Recommendation != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Recommendation)
			}
			if got.AllReviewersDone != tc.allDone || got.UnanimousApproval != tc.unanimous {
				t.Fatalf("unexpected flags: %+v", got)
			}
		})
	}
}

func TestAggregateIgnoresDeclinedInAssignedCount(t *testing.T) {
	got := Aggregate([]entities.Review{
		completed(entities.ReviewDecisionAccept),
		{Status: entities.ReviewStatusDeclined},
		{Status: entities.ReviewStatusInProgress},
	})
	if got.Assigned != 2 || got.Completed != 1 || got.Accepts != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}
