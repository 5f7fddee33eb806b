package messaging

import (
	"context"
	"testing"
	"time"

	contractsv1 "ijaism/contracts/gen/events/v1"
)

func TestBusDeliversToTopicAndWildcardSubscribers(t *testing.T) {
	bus, err := NewBus([]string{"localhost:9092"}, nil)
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topicEvents := make(chan contractsv1.Envelope, 1)
	allEvents := make(chan contractsv1.Envelope, 2)
	if err := bus.Subscribe(ctx, contractsv1.EventReviewAssigned, "notifications", func(_ context.Context, event contractsv1.Envelope) error {
		topicEvents <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe topic: %v", err)
	}
	if err := bus.Subscribe(ctx, AllTopics, "audit", func(_ context.Context, event contractsv1.Envelope) error {
		allEvents <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe wildcard: %v", err)
	}

	if err := bus.Publish(ctx, contractsv1.EventReviewAssigned, contractsv1.Envelope{EventID: "evt-1", EventType: contractsv1.EventReviewAssigned}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Publish(ctx, contractsv1.EventArticleStatusChanged, contractsv1.Envelope{EventID: "evt-2", EventType: contractsv1.EventArticleStatusChanged}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-topicEvents:
		if event.EventID != "evt-1" {
			t.Fatalf("expected evt-1 on topic subscriber, got %s", event.EventID)
		}
	case <-time.After(time.Second):
		t.Fatalf("topic subscriber did not receive event")
	}
	for i := 0; i < 2; i++ {
		select {
		case <-allEvents:
		case <-time.After(time.Second):
			t.Fatalf("wildcard subscriber received %d of 2 events", i)
		}
	}
	select {
	case event := <-topicEvents:
		t.Fatalf("topic subscriber received unrelated event %s", event.EventID)
	default:
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus, _ := NewBus(nil, nil)
	if err := bus.Publish(context.Background(), "article.status_changed", contractsv1.Envelope{EventID: "evt"}); err != nil {
		t.Fatalf("publish without subscribers: %v", err)
	}
}
