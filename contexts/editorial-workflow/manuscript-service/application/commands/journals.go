package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type CreateJournalCommand struct {
	ActorID string
	Code    string
	Name    string
}

type CreateJournalUseCase struct {
	Journals ports.JournalRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc CreateJournalUseCase) Execute(ctx context.Context, cmd CreateJournalCommand) (entities.Journal, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Journal{}, err
	}
	if !services.Can(actor, services.ActionCreateJournal, services.AccessFacts{}) {
		return entities.Journal{}, domainerrors.ErrAuthorization
	}
	journalID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Journal{}, err
	}
	journal := entities.Journal{
		JournalID: journalID,
		Code:      strings.ToUpper(strings.TrimSpace(cmd.Code)),
		Name:      strings.TrimSpace(cmd.Name),
		CreatedAt: uc.Clock.Now().UTC(),
	}
	if !journal.ValidateCreate() {
		return entities.Journal{}, fmt.Errorf("%w: journal code (max 16 characters) and name are required", domainerrors.ErrValidation)
	}
	if err := uc.Journals.CreateJournal(ctx, journal); err != nil {
		return entities.Journal{}, err
	}
	logger.Info("journal created",
		"event", "journal_created",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"journal_id", journal.JournalID,
		"code", journal.Code,
	)
	return journal, nil
}

type CreateIssueCommand struct {
	ActorID     string
	JournalID   string
	Volume      int
	IssueNumber int
	Year        int
	IsSpecial   bool
	Title       string
}

type CreateIssueUseCase struct {
	Journals ports.JournalRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc CreateIssueUseCase) Execute(ctx context.Context, cmd CreateIssueCommand) (entities.Issue, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Issue{}, err
	}
	journal, err := uc.Journals.GetJournal(ctx, strings.TrimSpace(cmd.JournalID))
	if err != nil {
		return entities.Issue{}, err
	}
	facts, err := access.JournalFacts(ctx, actor, journal.JournalID)
	if err != nil {
		return entities.Issue{}, err
	}
	if !services.Can(actor, services.ActionCreateIssue, facts) {
		return entities.Issue{}, domainerrors.ErrAuthorization
	}

	issueID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Issue{}, err
	}
	issue := entities.Issue{
		IssueID:     issueID,
		JournalID:   journal.JournalID,
		Volume:      cmd.Volume,
		IssueNumber: cmd.IssueNumber,
		Year:        cmd.Year,
		IsSpecial:   cmd.IsSpecial,
		Title:       strings.TrimSpace(cmd.Title),
		CreatedAt:   uc.Clock.Now().UTC(),
	}
	if !issue.ValidateCreate() {
		return entities.Issue{}, fmt.Errorf("%w: volume and issue must be positive and year between 1900 and 9999", domainerrors.ErrValidation)
	}
	if err := uc.Journals.CreateIssue(ctx, issue); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateIssue) {
			logger.Warn("duplicate issue rejected",
				"event", "issue_create_duplicate",
				"module", "editorial-workflow/manuscript-service",
				"layer", "application",
				"journal_id", issue.JournalID,
				"volume", issue.Volume,
				"issue_number", issue.IssueNumber,
			)
		}
		return entities.Issue{}, err
	}
	logger.Info("issue created",
		"event", "issue_created",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"issue_id", issue.IssueID,
		"journal_id", issue.JournalID,
		"volume", issue.Volume,
		"issue_number", issue.IssueNumber,
	)
	return issue, nil
}

type BindEditorCommand struct {
	ActorID   string
	UserID    string
	JournalID string
}

type BindEditorUseCase struct {
	Journals ports.JournalRepository
	Users    ports.UserRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc BindEditorUseCase) Execute(ctx context.Context, cmd BindEditorCommand) (entities.Editorship, error) {
	logger := application.ResolveLogger(uc.Logger)
	access := application.AccessResolver{Users: uc.Users}
	actor, err := access.Principal(ctx, cmd.ActorID)
	if err != nil {
		return entities.Editorship{}, err
	}
	if !services.Can(actor, services.ActionBindEditor, services.AccessFacts{}) {
		return entities.Editorship{}, domainerrors.ErrAuthorization
	}
	journal, err := uc.Journals.GetJournal(ctx, strings.TrimSpace(cmd.JournalID))
	if err != nil {
		return entities.Editorship{}, err
	}
	user, err := uc.Users.GetUser(ctx, strings.TrimSpace(cmd.UserID))
	if err != nil {
		return entities.Editorship{}, err
	}
	if !user.Role.IsEditorial() {
		return entities.Editorship{}, fmt.Errorf("%w: only editors and sub-editors can be bound to a journal", domainerrors.ErrValidation)
	}

	editorship := entities.Editorship{
		UserID:    user.UserID,
		JournalID: journal.JournalID,
		BoundBy:   actor.UserID,
		CreatedAt: uc.Clock.Now().UTC(),
	}
	if err := uc.Users.BindEditor(ctx, editorship); err != nil {
		return entities.Editorship{}, err
	}
	logger.Info("editor bound to journal",
		"event", "journal_editor_bound",
		"module", "editorial-workflow/manuscript-service",
		"layer", "application",
		"user_id", user.UserID,
		"journal_id", journal.JournalID,
	)
	return editorship, nil
}
