package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

// OutboxRelay publishes pending editorial events to the bus. Delivery is
// at-least-once; a publish failure leaves the row pending for the next cycle.
// A row whose payload cannot be decoded is marked failed and skipped.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("editorial outbox list failed",
			"event", "editorial_outbox_list_failed",
			"module", "editorial-workflow/manuscript-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("editorial outbox decode failed",
				"event", "editorial_outbox_decode_failed",
				"module", "editorial-workflow/manuscript-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			if markErr := r.Outbox.MarkOutboxFailed(ctx, row.OutboxID, err.Error(), now); markErr != nil {
				return markErr
			}
			continue
		}

		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("editorial outbox publish failed",
				"event", "editorial_outbox_publish_failed",
				"module", "editorial-workflow/manuscript-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"topic", topic,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("editorial outbox mark published failed",
				"event", "editorial_outbox_mark_published_failed",
				"module", "editorial-workflow/manuscript-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		published++
	}

	if published > 0 {
		logger.Info("editorial outbox relay cycle completed",
			"event", "editorial_outbox_relay_completed",
			"module", "editorial-workflow/manuscript-service",
			"layer", "worker",
			"published_count", published,
		)
	}
	return nil
}
