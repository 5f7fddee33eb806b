package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event envelope shared by the engine outbox and
// the notification collaborator. Fields are append-only.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

const (
	EventArticleStatusChanged = "article.status_changed"
	EventArticleIssueAssigned = "article.issue_assigned"
	EventReviewAssigned       = "review.assigned"
	EventReviewSubmitted      = "review.submitted"
	EventReviewDeclined       = "review.declined"
	EventReviewReminderDue    = "review.reminder_due"
	EventUserRoleChanged      = "user.role_changed"
)
