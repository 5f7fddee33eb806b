package entities

import (
	"strings"
	"time"
)

type Journal struct {
	JournalID string
	Code      string
	Name      string
	CreatedAt time.Time
}

func (j Journal) ValidateCreate() bool {
	code := strings.TrimSpace(j.Code)
	return code != "" && len(code) <= 16 && strings.TrimSpace(j.Name) != ""
}

// Issue is unique per (JournalID, Volume, IssueNumber).
type Issue struct {
	IssueID     string
	JournalID   string
	Volume      int
	IssueNumber int
	Year        int
	IsSpecial   bool
	Title       string
	CreatedAt   time.Time
}

func (i Issue) ValidateCreate() bool {
	return strings.TrimSpace(i.JournalID) != "" &&
		i.Volume > 0 &&
		i.IssueNumber > 0 &&
		i.Year >= 1900 &&
		i.Year <= 9999
}
