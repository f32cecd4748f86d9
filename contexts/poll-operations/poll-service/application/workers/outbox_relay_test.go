package workers

import (
	"context"
	"errors"
	"testing"

	"ballotbox/contexts/poll-operations/poll-service/adapters/memory"
	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

type capturingPublisher struct {
	published []ports.EventEnvelope
	failUntil int
	calls     int
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	p.calls++
	if p.calls <= p.failUntil {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, eventIDs ...string) {
	t.Helper()
	for _, eventID := range eventIDs {
		err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:      eventID,
			EventType:    "poll.created",
			PartitionKey: "ABC123",
		})
		if err != nil {
			t.Fatalf("append outbox %s failed: %v", eventID, err)
		}
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore([]entities.Poll{})
	seedOutbox(t, store, "evt-1", "evt-2")
	publisher := &capturingPublisher{}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained, got %d pending", len(pending))
	}
}

func TestOutboxRelayKeepsRowPendingOnPublishFailure(t *testing.T) {
	store := memory.NewStore([]entities.Poll{})
	seedOutbox(t, store, "evt-1")
	publisher := &capturingPublisher{failUntil: 1}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure to surface")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending after failure, got %d", len(pending))
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected retry to publish the row, got %d", len(publisher.published))
	}
}
