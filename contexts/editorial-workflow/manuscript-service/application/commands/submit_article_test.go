package commands

import (
	"errors"
	"testing"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	contractsv1 "ijaism/contracts/gen/events/v1"
)

func TestSubmitArticleCreatesSubmittedArticle(t *testing.T) {
	f := newFixture(t, 0)
	article := f.submit("author-1")

	if article.Status != entities.ArticleStatusSubmitted || article.ReviewRound != 1 || article.Version != 1 {
		t.Fatalf("unexpected article: %+v", article)
	}
	if article.CoAuthors[0].Email != "grace@example.org" {
		t.Fatalf("expected normalized co-author email, got %q", article.CoAuthors[0].Email)
	}
	history, err := f.store.ListTransitions(f.ctx, article.ArticleID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	if len(history) != 1 || history[0].FromStatus != "" || history[0].ToStatus != entities.ArticleStatusSubmitted {
		t.Fatalf("unexpected history: %+v", history)
	}
	events := f.store.OutboxEvents()
	if len(events) != 1 || events[0].EventType != contractsv1.EventArticleStatusChanged {
		t.Fatalf("expected one status_changed event, got %+v", events)
	}
}

func TestSubmitArticleRequiresAuthor(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.submitUseCase().Execute(f.ctx, submitCommand("editor-1", "journal-1"))
	if !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	_, err = f.submitUseCase().Execute(f.ctx, submitCommand("ghost", "journal-1"))
	if !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}

func TestSubmitArticleRejectsUnknownJournal(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.submitUseCase().Execute(f.ctx, submitCommand("author-1", "journal-404"))
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitArticleIdempotency(t *testing.T) {
	f := newFixture(t, 0)
	cmd := submitCommand("author-1", "journal-1")
	cmd.IdempotencyKey = "submit-1"

	first, err := f.submitUseCase().Execute(f.ctx, cmd)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	replay, err := f.submitUseCase().Execute(f.ctx, cmd)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Replayed || replay.Article.ArticleID != first.Article.ArticleID {
		t.Fatalf("expected replay of %s, got %+v", first.Article.ArticleID, replay)
	}

	changed := cmd
	changed.Title = "A different manuscript"
	if _, err := f.submitUseCase().Execute(f.ctx, changed); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}

	other := cmd
	other.ActorID = "author-2"
	fromOther, err := f.submitUseCase().Execute(f.ctx, other)
	if err != nil {
		t.Fatalf("same key from another author failed: %v", err)
	}
	if fromOther.Replayed || fromOther.Article.ArticleID == first.Article.ArticleID {
		t.Fatalf("expected keys to be scoped per author")
	}

	f.clock.Advance(8 * 24 * time.Hour)
	expired, err := f.submitUseCase().Execute(f.ctx, cmd)
	if err != nil {
		t.Fatalf("submit after expiry failed: %v", err)
	}
	if expired.Replayed || expired.Article.ArticleID == first.Article.ArticleID {
		t.Fatalf("expected a new article after key expiry")
	}
}
