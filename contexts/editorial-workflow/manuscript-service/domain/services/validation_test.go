package services

import (
	"errors"
	"strings"
	"testing"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

func validManuscript() entities.Article {
	return entities.Article{
		JournalID:   "journal-1",
		Title:       "Adaptive scheduling in heterogeneous clusters",
		Abstract:    strings.TrimSpace(strings.Repeat("word ", 200)),
		Keywords:    []string{"scheduling", "clusters", "latency", "throughput"},
		ArticleType: "research",
	}
}

func TestValidateManuscript(t *testing.T) {
	if err := ValidateManuscript(validManuscript()); err != nil {
		t.Fatalf("expected valid manuscript, got %v", err)
	}

	cases := map[string]func(*entities.Article){
		"short abstract":      func(a *entities.Article) { a.Abstract = strings.Repeat("word ", 149) },
		"long abstract":       func(a *entities.Article) { a.Abstract = strings.Repeat("word ", 301) },
		"duplicate keywords":  func(a *entities.Article) { a.Keywords = []string{"a", "A", "b", "c"} },
		"too many keywords":   func(a *entities.Article) { a.Keywords = []string{"a", "b", "c", "d", "e", "f", "g", "h"} },
		"missing title":       func(a *entities.Article) { a.Title = " " },
		"missing type":        func(a *entities.Article) { a.ArticleType = "" },
		"negative apc":        func(a *entities.Article) { a.APCAmount = -1 },
		"bad co-author email": func(a *entities.Article) { a.CoAuthors = []entities.CoAuthor{{Name: "Ada", Email: "nope"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			article := validManuscript()
			mutate(&article)
			if err := ValidateManuscript(article); !errors.Is(err, domainerrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
