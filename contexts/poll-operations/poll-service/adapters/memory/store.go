package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	"ballotbox/contexts/poll-operations/poll-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	polls map[string]entities.Poll
	votes map[string]entities.Vote
	// voterIndex maps poll_id+"\x00"+user_id to the vote id so duplicate
	// admission checks and insert uniqueness share one structure.
	voterIndex map[string]string
	outbox     map[string]outboxRecord
}

func NewStore(seed []entities.Poll) *Store {
	polls := make(map[string]entities.Poll, len(seed))
	for _, poll := range seed {
		polls[poll.PollID] = poll
	}
	return &Store{
		polls:      polls,
		votes:      make(map[string]entities.Vote),
		voterIndex: make(map[string]string),
		outbox:     make(map[string]outboxRecord),
	}
}

func voterKey(pollID string, userID string) string {
	return strings.TrimSpace(pollID) + "\x00" + strings.TrimSpace(userID)
}

func (s *Store) CreatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pollID := strings.TrimSpace(poll.PollID)
	if _, exists := s.polls[pollID]; exists {
		return domainerrors.ErrConflict
	}
	s.polls[pollID] = poll
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (s *Store) ListPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		items = append(items, poll)
	}
	sortPollsByCreation(items)
	return items, nil
}

func (s *Store) UpdatePollFlags(
	_ context.Context,
	pollID string,
	isActive bool,
	resultsPublished bool,
	updatedAt time.Time,
) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(pollID)
	poll, ok := s.polls[key]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	poll.IsActive = isActive
	poll.ResultsPublished = resultsPublished
	poll.UpdatedAt = updatedAt.UTC()
	s.polls[key] = poll
	return poll, nil
}

func (s *Store) DeletePollCascade(_ context.Context, pollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(pollID)
	if _, ok := s.polls[key]; !ok {
		return domainerrors.ErrPollNotFound
	}
	delete(s.polls, key)
	for voteID, vote := range s.votes {
		if vote.PollID != key {
			continue
		}
		delete(s.votes, voteID)
		delete(s.voterIndex, voterKey(vote.PollID, vote.UserID))
	}
	return nil
}

func (s *Store) ListPollsVotedByUser(_ context.Context, userID string) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID = strings.TrimSpace(userID)
	seen := make(map[string]struct{})
	items := make([]entities.Poll, 0)
	for _, vote := range s.votes {
		if vote.UserID != userID {
			continue
		}
		if _, dup := seen[vote.PollID]; dup {
			continue
		}
		seen[vote.PollID] = struct{}{}
		if poll, ok := s.polls[vote.PollID]; ok {
			items = append(items, poll)
		}
	}
	sortPollsByCreation(items)
	return items, nil
}

func (s *Store) CountPolls(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.polls)), nil
}

func (s *Store) CountPublishedPolls(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, poll := range s.polls {
		if poll.ResultsPublished {
			count++
		}
	}
	return count, nil
}

// CreateVote checks and inserts under one lock so two concurrent submissions
// for the same (poll, user) cannot both succeed.
func (s *Store) CreateVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voterKey(vote.PollID, vote.UserID)
	if _, exists := s.voterIndex[key]; exists {
		return domainerrors.ErrConflict
	}
	voteID := strings.TrimSpace(vote.VoteID)
	s.votes[voteID] = vote
	s.voterIndex[key] = voteID
	return nil
}

func (s *Store) GetVoteByVoter(_ context.Context, pollID string, userID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voteID, ok := s.voterIndex[voterKey(pollID, userID)]
	if !ok {
		return entities.Vote{}, false, nil
	}
	vote, ok := s.votes[voteID]
	if !ok {
		return entities.Vote{}, false, nil
	}
	return vote, true, nil
}

func (s *Store) ListVotesByPoll(_ context.Context, pollID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pollID = strings.TrimSpace(pollID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.PollID == pollID {
			items = append(items, vote)
		}
	}
	sortVotesByCreation(items)
	return items, nil
}

func (s *Store) ListVotesByUser(_ context.Context, userID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID = strings.TrimSpace(userID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.UserID == userID {
			items = append(items, vote)
		}
	}
	sortVotesByCreation(items)
	return items, nil
}

func (s *Store) ListVotes(_ context.Context) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0, len(s.votes))
	for _, vote := range s.votes {
		items = append(items, vote)
	}
	sortVotesByCreation(items)
	return items, nil
}

func (s *Store) CountVotes(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.votes)), nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortPollsByCreation(items []entities.Poll) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PollID < items[j].PollID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortVotesByCreation(items []entities.Vote) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
