package commands

import (
	"errors"
	"strings"
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

func TestRevisionRoundTrip(t *testing.T) {
	f := newFixture(t, 4)
	article := f.submit("author-1")
	pending := f.assign(article.ArticleID, "reviewer-1", "reviewer-2").Reviews[1]

	revise := DecideCommand{
		ActorID:          "editor-1",
		ArticleID:        article.ArticleID,
		Decision:         "revise",
		CommentsToAuthor: revisionComments(),
		CommentsToEditor: "clarify the baseline",
	}
	if _, err := f.decideUseCase().Execute(f.ctx, DecideCommand{ActorID: "editor-2", ArticleID: article.ArticleID, Decision: "revise", CommentsToAuthor: revisionComments(), CommentsToEditor: "x"}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected unbound editor to be denied, got %v", err)
	}
	revised, err := f.decideUseCase().Execute(f.ctx, revise)
	if err != nil {
		t.Fatalf("revise failed: %v", err)
	}
	if revised.Status != entities.ArticleStatusRevisionRequested {
		t.Fatalf("expected revision_requested, got %s", revised.Status)
	}

	if _, err := f.resubmitUseCase().Execute(f.ctx, ResubmitArticleCommand{ActorID: "author-2", ArticleID: article.ArticleID}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected other author to be denied, got %v", err)
	}
	resubmitted, err := f.resubmitUseCase().Execute(f.ctx, ResubmitArticleCommand{
		ActorID:   "author-1",
		ArticleID: article.ArticleID,
		Title:     "Federated learning for clinical triage, revised",
		Notes:     "addressed reviewer comments",
	})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if resubmitted.Status != entities.ArticleStatusResubmitted || resubmitted.ReviewRound != 2 {
		t.Fatalf("unexpected resubmitted article: %+v", resubmitted)
	}
	if resubmitted.Abstract != article.Abstract || len(resubmitted.Keywords) != len(article.Keywords) {
		t.Fatalf("expected omitted fields to be kept")
	}

	_, err = f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{ActorID: "editor-1", ArticleID: article.ArticleID, ReviewerIDs: []string{"reviewer-3"}})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected assignment to be blocked after resubmission, got %v", err)
	}

	if _, err := f.reviewUseCase().Submit(f.ctx, SubmitReviewCommand{ActorID: "reviewer-2", ReviewID: pending.ReviewID, Decision: "accept"}); err != nil {
		t.Fatalf("expected open review to remain actionable, got %v", err)
	}

	accepted, err := f.decideUseCase().Execute(f.ctx, DecideCommand{ActorID: "editor-1", ArticleID: article.ArticleID, Decision: "accept"})
	if err != nil {
		t.Fatalf("accept after resubmission failed: %v", err)
	}
	if accepted.Status != entities.ArticleStatusAccepted || accepted.AcceptedAt == nil {
		t.Fatalf("unexpected accepted article: %+v", accepted)
	}

	history, err := f.store.ListTransitions(f.ctx, article.ArticleID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	var path []string
	for _, item := range history {
		path = append(path, string(item.ToStatus))
	}
	if got := strings.Join(path, ">"); got != "submitted>under_review>revision_requested>resubmitted>accepted" {
		t.Fatalf("unexpected history: %s", got)
	}
}

func TestRevisionDecisionNeedsFiftyCharacters(t *testing.T) {
	f := newFixture(t, 0)
	article := f.submit("author-1")
	_, err := f.decideUseCase().Execute(f.ctx, DecideCommand{
		ActorID:          "editor-1",
		ArticleID:        article.ArticleID,
		Decision:         "revise",
		CommentsToAuthor: strings.Repeat("c", 49),
		CommentsToEditor: "short",
	})
	if !errors.Is(err, domainerrors.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if f.article(article.ArticleID).Status != entities.ArticleStatusSubmitted {
		t.Fatalf("expected article to stay submitted")
	}
}

func TestPublishRequiresRecordedPayment(t *testing.T) {
	f := newFixture(t, 0)
	article := f.submit("author-1")
	if _, err := f.decideUseCase().Execute(f.ctx, DecideCommand{ActorID: "editor-1", ArticleID: article.ArticleID, Decision: "accept"}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	publish := DecideCommand{ActorID: "editor-1", ArticleID: article.ArticleID, Decision: "publish"}
	if _, err := f.decideUseCase().Execute(f.ctx, publish); !errors.Is(err, domainerrors.ErrPaymentRequired) {
		t.Fatalf("expected payment required, got %v", err)
	}

	payment := RecordAPCPaymentUseCase{Articles: f.store, Users: f.store, Clock: f.clock}
	if _, err := payment.Execute(f.ctx, RecordAPCPaymentCommand{ActorID: "editor-1", ArticleID: article.ArticleID}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected editor payment recording to be denied, got %v", err)
	}
	paid, err := payment.Execute(f.ctx, RecordAPCPaymentCommand{ActorID: "super-1", ArticleID: article.ArticleID, Amount: 400})
	if err != nil {
		t.Fatalf("record payment failed: %v", err)
	}
	if !paid.IsAPCPaid || paid.APCAmount != 400 {
		t.Fatalf("unexpected paid article: %+v", paid)
	}

	published, err := f.decideUseCase().Execute(f.ctx, publish)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if published.Status != entities.ArticleStatusPublished || !strings.HasPrefix(published.DOI, "10.5555/ijaism.2024.") {
		t.Fatalf("unexpected published article: status=%s doi=%s", published.Status, published.DOI)
	}
	if _, err := f.decideUseCase().Execute(f.ctx, DecideCommand{ActorID: "mother-1", ArticleID: article.ArticleID, Decision: "reject", Reason: "late"}); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected published article to be terminal, got %v", err)
	}
}

func TestMotherAdminPublishesWithoutPayment(t *testing.T) {
	f := newFixture(t, 0)
	article := f.submit("author-1")
	if _, err := f.decideUseCase().Execute(f.ctx, DecideCommand{ActorID: "mother-1", ArticleID: article.ArticleID, Decision: "accept"}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	published, err := f.decideUseCase().Execute(f.ctx, DecideCommand{ActorID: "mother-1", ArticleID: article.ArticleID, Decision: "publish", DOI: "10.1000/xyz"})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if published.IsAPCPaid || published.DOI != "10.1000/xyz" {
		t.Fatalf("unexpected published article: %+v", published)
	}
}
