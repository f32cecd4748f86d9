package messaging

import (
	"context"
	"testing"
	"time"

	"ballotbox/contexts/poll-operations/poll-service/ports"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus, err := NewKafka([]string{"localhost:9092"}, nil)
	if err != nil {
		t.Fatalf("NewKafka failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "vote.cast", "tally-readers", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	event := ports.EventEnvelope{EventID: "evt-1", EventType: "vote.cast"}
	if err := bus.Publish(ctx, "vote.cast", event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "evt-1" {
			t.Fatalf("expected evt-1, got %q", got.EventID)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("NewKafka failed: %v", err)
	}

	event := ports.EventEnvelope{EventID: "evt-orphan", EventType: "poll.created"}
	if err := bus.Publish(context.Background(), "poll.created", event); err != nil {
		t.Fatalf("Publish to empty topic failed: %v", err)
	}
}

func TestSlowSubscriberLosesEventsInsteadOfBlocking(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("NewKafka failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The handler never drains, so the channel buffer is the only capacity.
	block := make(chan struct{})
	err = bus.Subscribe(ctx, "poll.updated", "stalled-readers", func(_ context.Context, _ ports.EventEnvelope) error {
		<-block
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for i := 0; i < subscriberBuffer*2; i++ {
		event := ports.EventEnvelope{EventID: "evt", EventType: "poll.updated"}
		if err := bus.Publish(ctx, "poll.updated", event); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}
	close(block)
}
