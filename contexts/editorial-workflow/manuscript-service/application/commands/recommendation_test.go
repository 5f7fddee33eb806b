package commands

import (
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/application/queries"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
)

func TestRecommendationAfterResubmissionCountsExistingReviewers(t *testing.T) {
	f := newFixture(t, 2)
	article := f.submit("author-1")
	assigned := f.assign(article.ArticleID, "reviewer-1", "reviewer-2").Reviews

	if _, err := f.decideUseCase().Execute(f.ctx, DecideCommand{
		ActorID:          "editor-1",
		ArticleID:        article.ArticleID,
		Decision:         "revise",
		CommentsToAuthor: revisionComments(),
		CommentsToEditor: "tighten the evaluation",
	}); err != nil {
		t.Fatalf("revise failed: %v", err)
	}
	if _, err := f.resubmitUseCase().Execute(f.ctx, ResubmitArticleCommand{ActorID: "author-1", ArticleID: article.ArticleID}); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	for _, review := range assigned {
		if _, err := f.reviewUseCase().Submit(f.ctx, SubmitReviewCommand{ActorID: review.ReviewerID, ReviewID: review.ReviewID, Decision: "accept"}); err != nil {
			t.Fatalf("submit review failed: %v", err)
		}
	}

	recommendation := queries.RecommendationUseCase{Articles: f.store, Reviews: f.store, Users: f.store}
	result, err := recommendation.Execute(f.ctx, "editor-1", article.ArticleID)
	if err != nil {
		t.Fatalf("recommendation failed: %v", err)
	}
	if result.ReviewRound != 2 || result.AggregatedRound != 1 {
		t.Fatalf("expected round 2 aggregating round 1, got %d/%d", result.ReviewRound, result.AggregatedRound)
	}
	if result.Aggregation.Recommendation != services.RecommendationAutoAcceptEligible {
		t.Fatalf("expected auto_accept_eligible, got %+v", result.Aggregation)
	}
	if result.Aggregation.Assigned != 2 || result.Aggregation.Completed != 2 {
		t.Fatalf("unexpected counts: %+v", result.Aggregation)
	}
}
