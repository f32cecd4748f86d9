package commands

import (
	"context"
	"encoding/json"
	"time"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

func newPollEnvelope(
	eventID string,
	eventType string,
	pollID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Command-side events are partitioned by poll for stable ordering on
	// poll-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "poll-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "poll_id",
		PartitionKey:     pollID,
		Data:             payload,
	}, nil
}

func appendPollEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	poll entities.Poll,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"poll_id":     poll.PollID,
		"title":       poll.Title,
		"created_by":  poll.CreatedBy,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newPollEnvelope(eventID, eventType, poll.PollID, occurredAt, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}

func appendVoteEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	vote entities.Vote,
	occurredAt time.Time,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"vote_id":     vote.VoteID,
		"poll_id":     vote.PollID,
		"user_id":     vote.UserID,
		"option_id":   vote.OptionID,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	envelope, err := newPollEnvelope(eventID, "vote.cast", vote.PollID, occurredAt, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}
