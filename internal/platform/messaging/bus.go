package messaging

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	contractsv1 "ijaism/contracts/gen/events/v1"
)

// AllTopics subscribes a consumer to every published topic.
const AllTopics = "*"

// Bus is the event bus used by the outbox relay. It fans events out
// in-process to subscribers keyed by topic; the configured brokers are
// recorded for the external transport.
type Bus struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]subscription
	logger      *slog.Logger
}

type subscription struct {
	group string
	ch    chan contractsv1.Envelope
}

func NewBus(brokers []string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}, nil
}

func (b *Bus) Brokers() []string {
	return append([]string(nil), b.brokers...)
}

// Publish never blocks on a slow subscriber; the event is dropped for that
// subscriber and logged. Delivery to the notification collaborator is
// best-effort.
func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	topic = strings.TrimSpace(topic)
	b.mu.RLock()
	subs := append([]subscription(nil), b.subscribers[topic]...)
	subs = append(subs, b.subscribers[AllTopics]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

// Subscribe delivers events for topic to handler until ctx is cancelled.
// Handler errors are logged and do not stop the subscription.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	sub := subscription{
		group: consumerGroup,
		ch:    make(chan contractsv1.Envelope, 128),
	}
	topic = strings.TrimSpace(topic)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, sub.ch)
				return
			case event := <-sub.ch:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target chan contractsv1.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	filtered := make([]subscription, 0, len(items))
	for _, item := range items {
		if item.ch != target {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		delete(b.subscribers, topic)
		return
	}
	b.subscribers[topic] = filtered
}
