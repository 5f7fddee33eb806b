package services

import "ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"

// Recommendation is advisory; the editor's decision stays authoritative.
type Recommendation string

const (
	RecommendationInsufficientData   Recommendation = "insufficient_data"
	RecommendationRejectSuggested    Recommendation = "reject_suggested"
	RecommendationAutoAcceptEligible Recommendation = "auto_accept_eligible"
	RecommendationRevisionSuggested  Recommendation = "revision_suggested"
)

// Aggregation summarizes a review round.
type Aggregation struct {
	Recommendation    Recommendation
	Assigned          int
	Completed         int
	Accepts           int
	RevisionsAsked    int
	Rejects           int
	AllReviewersDone  bool
	UnanimousApproval bool
}

// Aggregate computes the recommendation for one round of reviews. Declined
// reviews are not counted as assigned.
func Aggregate(reviews []entities.Review) Aggregation {
	result := Aggregation{}
	for _, review := range reviews {
		if review.Status == entities.ReviewStatusDeclined {
			continue
		}
		result.Assigned++
		if review.Status != entities.ReviewStatusCompleted {
			continue
		}
		result.Completed++
		switch review.Decision {
		case entities.ReviewDecisionAccept:
			result.Accepts++
		case entities.ReviewDecisionRevisionRequested:
			result.RevisionsAsked++
		case entities.ReviewDecisionReject:
			result.Rejects++
		}
	}
	result.AllReviewersDone = result.Assigned >= 1 && result.Completed == result.Assigned
	result.UnanimousApproval = result.AllReviewersDone && result.Accepts == result.Completed

	switch {
	case result.Completed == 0:
		result.Recommendation = RecommendationInsufficientData
	case result.Rejects > 0:
		result.Recommendation = RecommendationRejectSuggested
	case result.UnanimousApproval:
		result.Recommendation = RecommendationAutoAcceptEligible
	default:
		result.Recommendation = RecommendationRevisionSuggested
	}
	return result
}
