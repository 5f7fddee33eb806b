package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

func seedArticle(t *testing.T, store *Store, articleID string) entities.Article {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	if _, err := store.GetJournal(ctx, "journal-1"); err != nil {
		if err := store.CreateJournal(ctx, entities.Journal{JournalID: "journal-1", Code: "IJAISM", Name: "Journal", CreatedAt: now}); err != nil {
			t.Fatalf("create journal failed: %v", err)
		}
	}
	article := entities.Article{
		ArticleID:   articleID,
		JournalID:   "journal-1",
		AuthorID:    "author-1",
		Status:      entities.ArticleStatusUnderReview,
		ReviewRound: 1,
		Version:     1,
		SubmittedAt: now,
	}
	err := store.CreateArticle(ctx, article, entities.StatusTransition{
		TransitionID: "t-" + articleID,
		ArticleID:    articleID,
		ToStatus:     entities.ArticleStatusSubmitted,
		CreatedAt:    now,
	}, nil)
	if err != nil {
		t.Fatalf("create article failed: %v", err)
	}
	return article
}

func assignOne(ctx context.Context, store *Store, articleID string, reviewerID string) error {
	for {
		article, err := store.GetArticle(ctx, articleID)
		if err != nil {
			return err
		}
		existing, err := store.ListReviews(ctx, ports.ReviewFilter{ArticleID: articleID})
		if err != nil {
			return err
		}
		numbers, err := services.NewReviewLedger(existing).Plan([]string{reviewerID})
		if err != nil {
			return err
		}
		next := article
		next.Version = article.Version + 1
		err = store.AssignReviews(ctx, ports.AssignmentMutation{
			Article:         next,
			ExpectedVersion: article.Version,
			Reviews: []entities.Review{{
				ReviewID:       "review-" + reviewerID,
				ArticleID:      articleID,
				ReviewerID:     reviewerID,
				ReviewerNumber: numbers[0],
				Round:          1,
				Status:         entities.ReviewStatusPending,
				Version:        1,
			}},
		})
		if errors.Is(err, domainerrors.ErrConflict) {
			continue
		}
		return err
	}
}

func TestConcurrentAssignmentsNeverExceedCap(t *testing.T) {
	store := NewStore()
	seedArticle(t, store, "article-1")
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- assignOne(ctx, store, "article-1", fmt.Sprintf("reviewer-%02d", i))
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrReviewerCapExceeded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	reviews, err := store.ListReviews(ctx, ports.ReviewFilter{ArticleID: "article-1"})
	if err != nil {
		t.Fatalf("list reviews failed: %v", err)
	}
	if succeeded != entities.MaxReviewersPerArticle || len(reviews) != entities.MaxReviewersPerArticle {
		t.Fatalf("expected exactly %d reviews, got %d (succeeded %d)", entities.MaxReviewersPerArticle, len(reviews), succeeded)
	}
	if err := services.NewReviewLedger(reviews).Verify(); err != nil {
		t.Fatalf("ledger invariant broken: %v", err)
	}
}

func TestAssignReviewsRejectsOverflowAndStaleVersion(t *testing.T) {
	store := NewStore()
	article := seedArticle(t, store, "article-1")
	ctx := context.Background()

	var five []entities.Review
	for i := 1; i <= 5; i++ {
		five = append(five, entities.Review{ReviewID: fmt.Sprintf("r-%d", i), ArticleID: article.ArticleID, ReviewerID: fmt.Sprintf("reviewer-%d", i), ReviewerNumber: i})
	}
	next := article
	next.Version = 2
	err := store.AssignReviews(ctx, ports.AssignmentMutation{Article: next, ExpectedVersion: 1, Reviews: five})
	if !errors.Is(err, domainerrors.ErrReviewerCapExceeded) {
		t.Fatalf("expected cap error, got %v", err)
	}

	err = store.AssignReviews(ctx, ports.AssignmentMutation{Article: next, ExpectedVersion: 7, Reviews: five[:1]})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected stale version conflict, got %v", err)
	}
	if len(store.OutboxEvents()) != 0 {
		t.Fatalf("expected no events from rejected writes")
	}
}

func TestSaveReviewChecksArticleStatus(t *testing.T) {
	store := NewStore()
	article := seedArticle(t, store, "article-1")
	ctx := context.Background()
	if err := assignOne(ctx, store, article.ArticleID, "reviewer-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	review, err := store.GetReview(ctx, "review-reviewer-1")
	if err != nil {
		t.Fatalf("get review failed: %v", err)
	}

	next := review
	next.Status = entities.ReviewStatusInProgress
	next.Version = review.Version + 1
	err = store.SaveReview(ctx, ports.ReviewMutation{Review: next, ExpectedVersion: review.Version, ExpectedArticleStatus: entities.ArticleStatusAccepted})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict on article status mismatch, got %v", err)
	}
	if err := store.SaveReview(ctx, ports.ReviewMutation{Review: next, ExpectedVersion: review.Version, ExpectedArticleStatus: entities.ArticleStatusUnderReview}); err != nil {
		t.Fatalf("save review failed: %v", err)
	}
	if err := store.SaveReview(ctx, ports.ReviewMutation{Review: next, ExpectedVersion: review.Version}); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected stale review version conflict, got %v", err)
	}

	loads, err := store.ActiveReviewLoads(ctx, []string{"reviewer-1", "reviewer-2"})
	if err != nil {
		t.Fatalf("loads failed: %v", err)
	}
	if loads["reviewer-1"] != 1 || loads["reviewer-2"] != 0 {
		t.Fatalf("unexpected loads: %v", loads)
	}
}

func TestIdempotencyRecordsExpire(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	record := ports.IdempotencyRecord{Key: "k", Operation: "op", RequestHash: "h1", ResponsePayload: []byte(`{}`), ExpiresAt: now.Add(time.Hour)}
	if err := store.PutRecord(ctx, record); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	conflicting := record
	conflicting.RequestHash = "h2"
	if err := store.PutRecord(ctx, conflicting); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, found, _ := store.GetRecord(ctx, "k", now); !found {
		t.Fatalf("expected live record")
	}
	if _, found, _ := store.GetRecord(ctx, "k", now.Add(2*time.Hour)); found {
		t.Fatalf("expected expired record to be dropped")
	}
}

func TestOutboxPendingAndPublished(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()
	if err := store.CreateJournal(ctx, entities.Journal{JournalID: "journal-1", Code: "J1", Name: "J", CreatedAt: now}); err != nil {
		t.Fatalf("create journal failed: %v", err)
	}
	events := []ports.EventEnvelope{
		{EventID: "evt-1", EventType: "article.status_changed", PartitionKey: "a-1", OccurredAt: now},
		{EventID: "evt-2", EventType: "article.status_changed", PartitionKey: "a-1", OccurredAt: now},
	}
	article := entities.Article{ArticleID: "a-1", JournalID: "journal-1", Status: entities.ArticleStatusSubmitted, Version: 1}
	if err := store.CreateArticle(ctx, article, entities.StatusTransition{ArticleID: "a-1"}, events); err != nil {
		t.Fatalf("create article failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected two pending rows, got %d (%v)", len(pending), err)
	}
	if err := store.MarkOutboxPublished(ctx, "evt-1", now); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, _ = store.ListPendingOutbox(ctx, 10)
	if len(pending) != 1 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("unexpected pending rows: %+v", pending)
	}
	if err := store.MarkOutboxPublished(ctx, "evt-404", now); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict for unknown row, got %v", err)
	}
	if err := store.MarkOutboxFailed(ctx, "evt-2", "undecodable payload", now); err != nil {
		t.Fatalf("mark failed failed: %v", err)
	}
	if pending, _ = store.ListPendingOutbox(ctx, 10); len(pending) != 0 {
		t.Fatalf("expected failed row to leave the pending list, got %+v", pending)
	}
}

func TestClosedArticleReviewsLeaveLoadsAndFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	article := seedArticle(t, store, "article-1")
	if err := assignOne(ctx, store, article.ArticleID, "reviewer-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	open := ports.ReviewFilter{ArticleStatuses: entities.ReviewStatuses}
	if reviews, _ := store.ListReviews(ctx, open); len(reviews) != 1 {
		t.Fatalf("expected the review while the article is open, got %d", len(reviews))
	}

	current, err := store.GetArticle(ctx, article.ArticleID)
	if err != nil {
		t.Fatalf("get article failed: %v", err)
	}
	accepted := current
	accepted.Status = entities.ArticleStatusAccepted
	accepted.Version = current.Version + 1
	if err := store.SaveArticle(ctx, ports.ArticleMutation{Article: accepted, ExpectedVersion: current.Version}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if reviews, _ := store.ListReviews(ctx, open); len(reviews) != 0 {
		t.Fatalf("expected closed-article review to be filtered out, got %d", len(reviews))
	}
	loads, err := store.ActiveReviewLoads(ctx, []string{"reviewer-1"})
	if err != nil {
		t.Fatalf("loads failed: %v", err)
	}
	if loads["reviewer-1"] != 0 {
		t.Fatalf("expected no load from a closed article, got %v", loads)
	}
}
