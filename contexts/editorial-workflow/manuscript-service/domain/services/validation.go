package services

import (
	"fmt"
	"net/mail"
	"strings"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

// ValidateManuscript checks the fields required at submission and
// resubmission. The first failing field is named in the error.
func ValidateManuscript(article entities.Article) error {
	if strings.TrimSpace(article.Title) == "" {
		return fmt.Errorf("%w: title is required", domainerrors.ErrValidation)
	}
	if len(strings.TrimSpace(article.Title)) > 300 {
		return fmt.Errorf("%w: title must be at most 300 characters", domainerrors.ErrValidation)
	}
	words := entities.WordCount(article.Abstract)
	if words < entities.AbstractMinWords || words > entities.AbstractMaxWords {
		return fmt.Errorf("%w: abstract must contain %d-%d words, got %d",
			domainerrors.ErrValidation, entities.AbstractMinWords, entities.AbstractMaxWords, words)
	}
	keywords := entities.NormalizeKeywords(article.Keywords)
	if len(keywords) < entities.KeywordsMin || len(keywords) > entities.KeywordsMax {
		return fmt.Errorf("%w: %d-%d distinct keywords are required, got %d",
			domainerrors.ErrValidation, entities.KeywordsMin, entities.KeywordsMax, len(keywords))
	}
	if strings.TrimSpace(article.ArticleType) == "" {
		return fmt.Errorf("%w: article type is required", domainerrors.ErrValidation)
	}
	if strings.TrimSpace(article.JournalID) == "" {
		return fmt.Errorf("%w: journal is required", domainerrors.ErrValidation)
	}
	if article.APCAmount < 0 {
		return fmt.Errorf("%w: apc amount must not be negative", domainerrors.ErrValidation)
	}
	for i, coAuthor := range article.CoAuthors {
		if strings.TrimSpace(coAuthor.Name) == "" {
			return fmt.Errorf("%w: co-author %d name is required", domainerrors.ErrValidation, i+1)
		}
		if _, err := mail.ParseAddress(strings.TrimSpace(coAuthor.Email)); err != nil {
			return fmt.Errorf("%w: co-author %d email is invalid", domainerrors.ErrValidation, i+1)
		}
	}
	return nil
}
