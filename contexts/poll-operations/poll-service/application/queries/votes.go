package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

type VotesUseCase struct {
	Votes ports.VoteRepository
}

func (uc VotesUseCase) ListVotes(ctx context.Context) ([]entities.Vote, error) {
	return uc.Votes.ListVotes(ctx)
}

func (uc VotesUseCase) VotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error) {
	return uc.Votes.ListVotesByPoll(ctx, strings.TrimSpace(pollID))
}

func (uc VotesUseCase) VotesByUser(ctx context.Context, userID string) ([]entities.Vote, error) {
	return uc.Votes.ListVotesByUser(ctx, strings.TrimSpace(userID))
}
