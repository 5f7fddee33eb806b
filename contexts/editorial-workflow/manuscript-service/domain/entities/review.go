package entities

import "time"

type ReviewStatus string

const (
	ReviewStatusPending    ReviewStatus = "pending"
	ReviewStatusInProgress ReviewStatus = "in_progress"
	ReviewStatusCompleted  ReviewStatus = "completed"
	ReviewStatusDeclined   ReviewStatus = "declined"
)

// Active reviews count toward a reviewer's current load.
func (s ReviewStatus) Active() bool {
	return s == ReviewStatusPending || s == ReviewStatusInProgress
}

type ReviewDecision string

const (
	ReviewDecisionAccept            ReviewDecision = "accept"
	ReviewDecisionRevisionRequested ReviewDecision = "revision_requested"
	ReviewDecisionReject            ReviewDecision = "reject"
)

func ParseReviewDecision(value string) (ReviewDecision, bool) {
	switch ReviewDecision(value) {
	case ReviewDecisionAccept, ReviewDecisionRevisionRequested, ReviewDecisionReject:
		return ReviewDecision(value), true
	case "revise", "revision":
		return ReviewDecisionRevisionRequested, true
	default:
		return "", false
	}
}

// MaxReviewersPerArticle is the hard ledger cap.
const MaxReviewersPerArticle = 4

type Review struct {
	ReviewID         string
	ArticleID        string
	ReviewerID       string
	ReviewerNumber   int
	Round            int
	Status           ReviewStatus
	Decision         ReviewDecision
	CommentsToAuthor string
	CommentsToEditor string
	AssignedBy       string
	AssignedAt       time.Time
	DueDate          time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	DeclinedAt       *time.Time
	ReminderSentAt   *time.Time
	Version          int64
	UpdatedAt        time.Time
}

// Overdue reports whether an open review has passed its due date.
func (r Review) Overdue(now time.Time) bool {
	return r.Status.Active() && now.After(r.DueDate)
}
