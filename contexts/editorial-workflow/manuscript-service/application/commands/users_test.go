package commands

import (
	"context"
	"errors"
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/adapters/memory"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

func TestBootstrapAdminRunsOnce(t *testing.T) {
	store := memory.NewStore()
	uc := BootstrapAdminUseCase{Users: store, Clock: store, IDGen: store}

	admin, created, err := uc.Execute(context.Background(), "Root@Example.org", "")
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if !created || admin.Role != entities.RoleMotherAdmin || admin.Email != "root@example.org" {
		t.Fatalf("unexpected bootstrap admin: %+v created=%v", admin, created)
	}
	again, created, err := uc.Execute(context.Background(), "other@example.org", "Other")
	if err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	if created || again.UserID != admin.UserID {
		t.Fatalf("expected existing admin to be returned")
	}
}

func TestCreateUserFollowsRoleMatrix(t *testing.T) {
	f := newFixture(t, 0)
	uc := CreateUserUseCase{Users: f.store, Clock: f.clock, IDGen: f.store}

	sub, err := uc.Execute(f.ctx, CreateUserCommand{ActorID: "editor-1", Email: "sub@example.org", FullName: "Sub Editor", Role: "sub_editor"})
	if err != nil {
		t.Fatalf("editor creating sub editor failed: %v", err)
	}
	if sub.Role != entities.RoleSubEditor || !sub.IsActive {
		t.Fatalf("unexpected user: %+v", sub)
	}
	if _, err := uc.Execute(f.ctx, CreateUserCommand{ActorID: "editor-1", Email: "rev@example.org", FullName: "Rev", Role: "reviewer"}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected editor creating reviewer to be denied, got %v", err)
	}
	if _, err := uc.Execute(f.ctx, CreateUserCommand{ActorID: "super-1", Email: "boss@example.org", FullName: "Boss", Role: "super_admin"}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected super admin creating super admin to be denied, got %v", err)
	}
	if _, err := uc.Execute(f.ctx, CreateUserCommand{ActorID: "mother-1", Email: "x@example.org", FullName: "X", Role: "dean"}); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected unknown role to be rejected, got %v", err)
	}
	if _, err := uc.Execute(f.ctx, CreateUserCommand{ActorID: "mother-1", Email: "SUB@example.org", FullName: "Dup", Role: "author"}); !errors.Is(err, domainerrors.ErrDuplicateUser) {
		t.Fatalf("expected duplicate email to be rejected, got %v", err)
	}
}

func TestChangeRoleAuditsAndDropsEditorships(t *testing.T) {
	f := newFixture(t, 0)
	uc := ChangeRoleUseCase{Users: f.store, Clock: f.clock, IDGen: f.store}

	if _, err := uc.Execute(f.ctx, ChangeRoleCommand{ActorID: "super-1", UserID: "editor-1", Role: "super_admin"}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected promotion to super admin by super admin to be denied, got %v", err)
	}
	if _, err := uc.Execute(f.ctx, ChangeRoleCommand{ActorID: "mother-1", UserID: "mother-1", Role: "author"}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected self role change to be denied, got %v", err)
	}

	changed, err := uc.Execute(f.ctx, ChangeRoleCommand{ActorID: "super-1", UserID: "editor-1", Role: "reviewer"})
	if err != nil {
		t.Fatalf("role change failed: %v", err)
	}
	if changed.Role != entities.RoleReviewer {
		t.Fatalf("expected reviewer, got %s", changed.Role)
	}
	journals, err := f.store.ListEditorJournals(f.ctx, "editor-1")
	if err != nil {
		t.Fatalf("list editor journals failed: %v", err)
	}
	if len(journals) != 0 {
		t.Fatalf("expected editorships to be dropped, got %v", journals)
	}

	audits := f.store.RoleAudits()
	last := audits[len(audits)-1]
	if last.PreviousRole != entities.RoleEditor || last.NewRole != entities.RoleReviewer || last.ChangedBy != "super-1" {
		t.Fatalf("unexpected audit: %+v", last)
	}
}

func TestJournalAdministration(t *testing.T) {
	f := newFixture(t, 0)
	createJournal := CreateJournalUseCase{Journals: f.store, Users: f.store, Clock: f.clock, IDGen: f.store}
	bindEditor := BindEditorUseCase{Journals: f.store, Users: f.store, Clock: f.clock}

	if _, err := createJournal.Execute(f.ctx, CreateJournalCommand{ActorID: "editor-1", Code: "NEW", Name: "New Journal"}); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected editor to be denied, got %v", err)
	}
	journal, err := createJournal.Execute(f.ctx, CreateJournalCommand{ActorID: "super-1", Code: "new", Name: "New Journal"})
	if err != nil {
		t.Fatalf("create journal failed: %v", err)
	}
	if journal.Code != "NEW" {
		t.Fatalf("expected upper-cased code, got %s", journal.Code)
	}
	if _, err := createJournal.Execute(f.ctx, CreateJournalCommand{ActorID: "mother-1", Code: "New", Name: "Again"}); !errors.Is(err, domainerrors.ErrDuplicateJournal) {
		t.Fatalf("expected duplicate journal, got %v", err)
	}

	if _, err := bindEditor.Execute(f.ctx, BindEditorCommand{ActorID: "super-1", UserID: "author-1", JournalID: journal.JournalID}); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected author binding to be rejected, got %v", err)
	}
	if _, err := bindEditor.Execute(f.ctx, BindEditorCommand{ActorID: "super-1", UserID: "editor-2", JournalID: journal.JournalID}); err != nil {
		t.Fatalf("bind editor failed: %v", err)
	}
	journals, err := f.store.ListEditorJournals(f.ctx, "editor-2")
	if err != nil {
		t.Fatalf("list editor journals failed: %v", err)
	}
	if len(journals) != 2 {
		t.Fatalf("expected two bound journals, got %v", journals)
	}
}
