package ports

import (
	"context"
	"time"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	contractsv1 "ballotbox/contracts/gen/events/v1"
)

type PollRepository interface {
	CreatePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	ListPolls(ctx context.Context) ([]entities.Poll, error)
	// UpdatePollFlags persists lifecycle flag changes only; title, options and
	// ownership are immutable after creation.
	UpdatePollFlags(ctx context.Context, pollID string, isActive bool, resultsPublished bool, updatedAt time.Time) (entities.Poll, error)
	// DeletePollCascade removes the poll and every vote referencing it as one
	// atomic unit; no reader may observe the poll gone with votes remaining.
	DeletePollCascade(ctx context.Context, pollID string) error
	ListPollsVotedByUser(ctx context.Context, userID string) ([]entities.Poll, error)
	CountPolls(ctx context.Context) (int64, error)
	CountPublishedPolls(ctx context.Context) (int64, error)
}

type VoteRepository interface {
	// CreateVote is insert-only. Implementations enforce uniqueness of
	// (poll_id, user_id) and return ErrConflict on violation so concurrent
	// duplicate submissions cannot both land.
	CreateVote(ctx context.Context, vote entities.Vote) error
	GetVoteByVoter(ctx context.Context, pollID string, userID string) (entities.Vote, bool, error)
	ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error)
	ListVotesByUser(ctx context.Context, userID string) ([]entities.Vote, error)
	ListVotes(ctx context.Context) ([]entities.Vote, error)
	CountVotes(ctx context.Context) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// CodeGenerator produces short human-shareable poll codes (uppercase
// alphanumeric). Uniqueness is the caller's concern; generators only
// guarantee shape and entropy.
type CodeGenerator interface {
	NewCode(ctx context.Context, length int) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
