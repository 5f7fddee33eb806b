package ports

import (
	"context"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	contractsv1 "ijaism/contracts/gen/events/v1"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for entities and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type ArticleFilter struct {
	AuthorID   string
	JournalIDs []string
	ArticleIDs []string
	Status     entities.ArticleStatus
	Limit      int
	Offset     int
}

// ArticleMutation is a compare-and-set write: it applies only when the stored
// version still equals ExpectedVersion. History rows and events are written in
// the same unit.
type ArticleMutation struct {
	Article         entities.Article
	ExpectedVersion int64
	Transition      *entities.StatusTransition
	IssueAudit      *entities.IssueAssignmentAudit
	Events          []EventEnvelope
}

// AssignmentMutation inserts reviews for one article. Implementations must
// re-verify the review ledger and the article version inside the same
// transaction that inserts the rows.
type AssignmentMutation struct {
	Article         entities.Article
	ExpectedVersion int64
	Reviews         []entities.Review
	Transition      *entities.StatusTransition
	Events          []EventEnvelope
}

// ReviewMutation is a compare-and-set write on a review. When
// ExpectedArticleStatus is set the owning article must still be in it.
type ReviewMutation struct {
	Review                entities.Review
	ExpectedVersion       int64
	ExpectedArticleStatus entities.ArticleStatus
	Events                []EventEnvelope
}

// ReviewFilter selects reviews. ArticleStatuses keeps reviews whose article
// is currently in one of the listed statuses.
type ReviewFilter struct {
	ArticleID       string
	ReviewerID      string
	Statuses        []entities.ReviewStatus
	ArticleStatuses []entities.ArticleStatus
	DueBefore       *time.Time
	NotReminded     bool
	Limit           int
}

type UserFilter struct {
	Role       entities.Role
	ActiveOnly bool
}

type ArticleRepository interface {
	CreateArticle(ctx context.Context, article entities.Article, transition entities.StatusTransition, events []EventEnvelope) error
	GetArticle(ctx context.Context, articleID string) (entities.Article, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]entities.Article, error)
	SaveArticle(ctx context.Context, mutation ArticleMutation) error
	ListTransitions(ctx context.Context, articleID string) ([]entities.StatusTransition, error)
}

type ReviewRepository interface {
	AssignReviews(ctx context.Context, mutation AssignmentMutation) error
	SaveReview(ctx context.Context, mutation ReviewMutation) error
	GetReview(ctx context.Context, reviewID string) (entities.Review, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]entities.Review, error)
	// ActiveReviewLoads counts pending and in-progress reviews on articles
	// that are still open for reviews.
	ActiveReviewLoads(ctx context.Context, reviewerIDs []string) (map[string]int, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User, audit *entities.RoleChangeAudit) error
	GetUser(ctx context.Context, userID string) (entities.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]entities.User, error)
	// ChangeRole applies only when the user still holds audit.PreviousRole.
	ChangeRole(ctx context.Context, audit entities.RoleChangeAudit, events []EventEnvelope) error
	ListEditorJournals(ctx context.Context, userID string) ([]string, error)
	BindEditor(ctx context.Context, editorship entities.Editorship) error
}

type JournalRepository interface {
	CreateJournal(ctx context.Context, journal entities.Journal) error
	GetJournal(ctx context.Context, journalID string) (entities.Journal, error)
	CreateIssue(ctx context.Context, issue entities.Issue) error
	GetIssue(ctx context.Context, issueID string) (entities.Issue, error)
	ListIssues(ctx context.Context, journalID string) ([]entities.Issue, error)
}

// IdempotencyRecord stores request hash and previous response payload.
type IdempotencyRecord struct {
	Key             string
	Operation       string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

// IdempotencyStore guarantees replay/conflict behavior for mutating endpoints.
type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

// OutboxMessage represents a pending relay message.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
	// MarkOutboxFailed parks a row that can never be published so it stops
	// being listed as pending.
	MarkOutboxFailed(ctx context.Context, outboxID string, reason string, failedAt time.Time) error
}

// EventPublisher hands events to the notification collaborator's bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
