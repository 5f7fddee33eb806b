package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/adapters/memory"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var fixtureEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	clock *fixedClock
}

func newFixture(t *testing.T, reviewers int) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		clock: &fixedClock{now: fixtureEpoch},
	}
	f.addUser("mother-1", entities.RoleMotherAdmin, fixtureEpoch.Add(-48*time.Hour))
	f.addUser("super-1", entities.RoleSuperAdmin, fixtureEpoch.Add(-47*time.Hour))
	f.addUser("editor-1", entities.RoleEditor, fixtureEpoch.Add(-46*time.Hour))
	f.addUser("editor-2", entities.RoleEditor, fixtureEpoch.Add(-45*time.Hour))
	f.addUser("author-1", entities.RoleAuthor, fixtureEpoch.Add(-44*time.Hour))
	f.addUser("author-2", entities.RoleAuthor, fixtureEpoch.Add(-43*time.Hour))
	for i := 1; i <= reviewers; i++ {
		f.addUser(reviewerID(i), entities.RoleReviewer, fixtureEpoch.Add(-time.Duration(24-i)*time.Hour))
	}

	if err := f.store.CreateJournal(f.ctx, entities.Journal{JournalID: "journal-1", Code: "IJAISM", Name: "Applied Informatics", CreatedAt: fixtureEpoch}); err != nil {
		t.Fatalf("seed journal failed: %v", err)
	}
	if err := f.store.CreateJournal(f.ctx, entities.Journal{JournalID: "journal-2", Code: "IJSE", Name: "Software Engineering", CreatedAt: fixtureEpoch}); err != nil {
		t.Fatalf("seed journal failed: %v", err)
	}
	if err := f.store.BindEditor(f.ctx, entities.Editorship{UserID: "editor-1", JournalID: "journal-1", BoundBy: "super-1", CreatedAt: fixtureEpoch}); err != nil {
		t.Fatalf("seed editorship failed: %v", err)
	}
	if err := f.store.BindEditor(f.ctx, entities.Editorship{UserID: "editor-2", JournalID: "journal-2", BoundBy: "super-1", CreatedAt: fixtureEpoch}); err != nil {
		t.Fatalf("seed editorship failed: %v", err)
	}
	return f
}

func reviewerID(i int) string {
	return fmt.Sprintf("reviewer-%d", i)
}

func (f *fixture) addUser(userID string, role entities.Role, createdAt time.Time) {
	f.t.Helper()
	err := f.store.CreateUser(f.ctx, entities.User{
		UserID:    userID,
		Email:     userID + "@example.org",
		FullName:  strings.ReplaceAll(userID, "-", " "),
		Role:      role,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil)
	if err != nil {
		f.t.Fatalf("seed user %s failed: %v", userID, err)
	}
}

func (f *fixture) submitUseCase() SubmitArticleUseCase {
	return SubmitArticleUseCase{
		Articles:    f.store,
		Journals:    f.store,
		Users:       f.store,
		Idempotency: f.store,
		Clock:       f.clock,
		IDGen:       f.store,
	}
}

func (f *fixture) assignUseCase() AssignReviewersUseCase {
	return AssignReviewersUseCase{
		Articles: f.store,
		Reviews:  f.store,
		Users:    f.store,
		Clock:    f.clock,
		IDGen:    f.store,
	}
}

func (f *fixture) autoAssignUseCase() AutoAssignReviewersUseCase {
	return AutoAssignReviewersUseCase{
		Articles:    f.store,
		Reviews:     f.store,
		Users:       f.store,
		Idempotency: f.store,
		Clock:       f.clock,
		IDGen:       f.store,
	}
}

func (f *fixture) reviewUseCase() ReviewActionsUseCase {
	return ReviewActionsUseCase{
		Articles: f.store,
		Reviews:  f.store,
		Users:    f.store,
		Clock:    f.clock,
		IDGen:    f.store,
	}
}

func (f *fixture) decideUseCase() DecideUseCase {
	return DecideUseCase{
		Articles:  f.store,
		Users:     f.store,
		Clock:     f.clock,
		IDGen:     f.store,
		DOIPrefix: "10.5555",
	}
}

func (f *fixture) resubmitUseCase() ResubmitArticleUseCase {
	return ResubmitArticleUseCase{
		Articles: f.store,
		Users:    f.store,
		Clock:    f.clock,
		IDGen:    f.store,
	}
}

func submitCommand(actorID string, journalID string) SubmitArticleCommand {
	return SubmitArticleCommand{
		ActorID:     actorID,
		JournalID:   journalID,
		Title:       "Federated learning for clinical triage",
		Abstract:    strings.TrimSpace(strings.Repeat("evidence ", 160)),
		Keywords:    []string{"federated learning", "triage", "privacy", "healthcare"},
		ArticleType: "research",
		APCAmount:   350,
		CoAuthors:   []entities.CoAuthor{{Name: "Grace Hopper", Email: "Grace@Example.org", University: "Yale"}},
	}
}

func (f *fixture) submit(actorID string) entities.Article {
	f.t.Helper()
	result, err := f.submitUseCase().Execute(f.ctx, submitCommand(actorID, "journal-1"))
	if err != nil {
		f.t.Fatalf("submit failed: %v", err)
	}
	return result.Article
}

func (f *fixture) assign(articleID string, reviewerIDs ...string) AssignReviewersResult {
	f.t.Helper()
	result, err := f.assignUseCase().Execute(f.ctx, AssignReviewersCommand{
		ActorID:     "editor-1",
		ArticleID:   articleID,
		ReviewerIDs: reviewerIDs,
	})
	if err != nil {
		f.t.Fatalf("assign failed: %v", err)
	}
	return result
}

func (f *fixture) article(articleID string) entities.Article {
	f.t.Helper()
	article, err := f.store.GetArticle(f.ctx, articleID)
	if err != nil {
		f.t.Fatalf("get article failed: %v", err)
	}
	return article
}

func revisionComments() string {
	return strings.Repeat("c", 50)
}

func portsReviewFilter(articleID string) ports.ReviewFilter {
	return ports.ReviewFilter{ArticleID: articleID}
}
