package queries

import (
	"context"
	"log/slog"
	"strings"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type ListIssuesUseCase struct {
	Journals ports.JournalRepository
	Logger   *slog.Logger
}

func (uc ListIssuesUseCase) Execute(ctx context.Context, journalID string) ([]entities.Issue, error) {
	journal, err := uc.Journals.GetJournal(ctx, strings.TrimSpace(journalID))
	if err != nil {
		return nil, err
	}
	return uc.Journals.ListIssues(ctx, journal.JournalID)
}
