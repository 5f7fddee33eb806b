package entities

import (
	"strings"
	"time"
)

type ArticleStatus string

const (
	ArticleStatusSubmitted         ArticleStatus = "submitted"
	ArticleStatusUnderReview       ArticleStatus = "under_review"
	ArticleStatusRevisionRequested ArticleStatus = "revision_requested"
	ArticleStatusResubmitted       ArticleStatus = "resubmitted"
	ArticleStatusAccepted          ArticleStatus = "accepted"
	ArticleStatusPublished         ArticleStatus = "published"
	ArticleStatusRejected          ArticleStatus = "rejected"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusSubmitted,
		ArticleStatusUnderReview,
		ArticleStatusRevisionRequested,
		ArticleStatusResubmitted,
		ArticleStatusAccepted,
		ArticleStatusPublished,
		ArticleStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal statuses accept no further transitions.
func (s ArticleStatus) Terminal() bool {
	return s == ArticleStatusPublished || s == ArticleStatusRejected
}

// ReviewStatuses lists the article statuses in which reviewers may still
// act on their reviews.
var ReviewStatuses = []ArticleStatus{
	ArticleStatusSubmitted,
	ArticleStatusUnderReview,
	ArticleStatusRevisionRequested,
	ArticleStatusResubmitted,
}

func (s ArticleStatus) OpenForReviews() bool {
	for _, status := range ReviewStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// AcceptsIssue reports whether an issue binding is allowed in this status.
func (s ArticleStatus) AcceptsIssue() bool {
	return s == ArticleStatusAccepted || s == ArticleStatusPublished
}

const (
	AbstractMinWords = 150
	AbstractMaxWords = 300
	KeywordsMin      = 4
	KeywordsMax      = 7
)

type Article struct {
	ArticleID                string
	JournalID                string
	IssueID                  string
	AuthorID                 string
	Title                    string
	Abstract                 string
	Keywords                 []string
	ArticleType              string
	Status                   ArticleStatus
	IsAPCPaid                bool
	APCAmount                float64
	DOI                      string
	ReviewRound              int
	DecisionCommentsToAuthor string
	DecisionCommentsToEditor string
	RejectionReason          string
	CoAuthors                []CoAuthor
	Version                  int64
	SubmittedAt              time.Time
	AcceptedAt               *time.Time
	PublishedAt              *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

type CoAuthor struct {
	Name       string
	Email      string
	University string
}

func (a Article) HasIssue() bool {
	return strings.TrimSpace(a.IssueID) != ""
}

// StatusTransition is the append-only lifecycle history of an article.
type StatusTransition struct {
	TransitionID string
	ArticleID    string
	FromStatus   ArticleStatus
	ToStatus     ArticleStatus
	ActorID      string
	ActorRole    Role
	Comments     string
	ReviewRound  int
	CreatedAt    time.Time
}

type IssueAssignmentAudit struct {
	AuditID         string
	ArticleID       string
	PreviousIssueID string
	NewIssueID      string
	ActorID         string
	ActorRole       Role
	CreatedAt       time.Time
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NormalizeKeywords trims, drops empties and de-duplicates case-insensitively
// while keeping the first spelling.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	items := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		value := strings.TrimSpace(keyword)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, value)
	}
	return items
}
