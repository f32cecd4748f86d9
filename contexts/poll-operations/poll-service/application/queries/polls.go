package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

type PollsUseCase struct {
	Polls ports.PollRepository
	Votes ports.VoteRepository
}

func (uc PollsUseCase) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}
	return uc.Polls.GetPoll(ctx, pollID)
}

func (uc PollsUseCase) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	return uc.Polls.ListPolls(ctx)
}

// AttendedPolls materializes the distinct set of polls the user has voted in.
// Order carries no guarantee beyond what the repository yields.
func (uc PollsUseCase) AttendedPolls(ctx context.Context, userID string) ([]entities.Poll, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	return uc.Polls.ListPollsVotedByUser(ctx, userID)
}

func (uc PollsUseCase) Summary(ctx context.Context) (entities.Summary, error) {
	polls, err := uc.Polls.CountPolls(ctx)
	if err != nil {
		return entities.Summary{}, err
	}
	published, err := uc.Polls.CountPublishedPolls(ctx)
	if err != nil {
		return entities.Summary{}, err
	}
	votes, err := uc.Votes.CountVotes(ctx)
	if err != nil {
		return entities.Summary{}, err
	}
	return entities.Summary{
		TotalPolls:     polls,
		TotalVotes:     votes,
		PublishedPolls: published,
	}, nil
}
