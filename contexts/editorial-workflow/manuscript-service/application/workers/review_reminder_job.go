package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
	contractsv1 "ijaism/contracts/gen/events/v1"
)

const defaultReminderLeadTime = 72 * time.Hour

// ReviewReminderJob emits one review.reminder_due event per open review whose
// due date falls within LeadTime. Overdue reviews are included.
type ReviewReminderJob struct {
	Reviews   ports.ReviewRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	LeadTime  time.Duration
	BatchSize int
	Disabled  bool
	Logger    *slog.Logger
}

func (j ReviewReminderJob) RunOnce(ctx context.Context) (int, error) {
	if j.Disabled {
		return 0, nil
	}
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	lead := j.LeadTime
	if lead <= 0 {
		lead = defaultReminderLeadTime
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	horizon := now.Add(lead)
	due, err := j.Reviews.ListReviews(ctx, ports.ReviewFilter{
		Statuses:        []entities.ReviewStatus{entities.ReviewStatusPending, entities.ReviewStatusInProgress},
		ArticleStatuses: entities.ReviewStatuses,
		DueBefore:       &horizon,
		NotReminded:     true,
		Limit:           limit,
	})
	if err != nil {
		logger.Error("review reminder scan failed",
			"event", "review_reminder_scan_failed",
			"module", "editorial-workflow/manuscript-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	sent := 0
	for _, review := range due {
		event, err := j.reminderEvent(ctx, review, now)
		if err != nil {
			return sent, err
		}
		next := review
		next.ReminderSentAt = &now
		next.UpdatedAt = now
		next.Version = review.Version + 1
		err = j.Reviews.SaveReview(ctx, ports.ReviewMutation{
			Review:          next,
			ExpectedVersion: review.Version,
			Events:          []ports.EventEnvelope{event},
		})
		if errors.Is(err, domainerrors.ErrConflict) {
			// The reviewer acted concurrently; the next sweep re-evaluates.
			continue
		}
		if err != nil {
			logger.Error("review reminder save failed",
				"event", "review_reminder_save_failed",
				"module", "editorial-workflow/manuscript-service",
				"layer", "worker",
				"review_id", review.ReviewID,
				"error", err.Error(),
			)
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		logger.Info("review reminders queued",
			"event", "review_reminders_queued",
			"module", "editorial-workflow/manuscript-service",
			"layer", "worker",
			"reminder_count", sent,
		)
	}
	return sent, nil
}

func (j ReviewReminderJob) reminderEvent(ctx context.Context, review entities.Review, now time.Time) (ports.EventEnvelope, error) {
	eventID, err := j.IDGen.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	payload, err := json.Marshal(map[string]any{
		"article_id":      review.ArticleID,
		"review_id":       review.ReviewID,
		"reviewer_id":     review.ReviewerID,
		"reviewer_number": review.ReviewerNumber,
		"due_date":        review.DueDate.UTC().Format(time.RFC3339),
		"overdue":         review.Overdue(now),
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        contractsv1.EventReviewReminderDue,
		OccurredAt:       now,
		SourceService:    "manuscript-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "article_id",
		PartitionKey:     review.ArticleID,
		Data:             payload,
	}, nil
}
