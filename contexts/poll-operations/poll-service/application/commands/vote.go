package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "ballotbox/contexts/poll-operations/poll-service/application"
	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

// SubmitVoteCommand is the write-model input for vote admission.
type SubmitVoteCommand struct {
	PollID   string
	UserID   string
	OptionID string
	Username string
}

type SubmitVoteUseCase struct {
	Polls  ports.PollRepository
	Votes  ports.VoteRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute admits at most one vote per (poll, user). The pre-check gives the
// caller a precise rejection; the store-level uniqueness on (poll_id, user_id)
// closes the window where two concurrent submissions both pass the check, so
// a racing loser surfaces as ErrDuplicateVote as well. On success exactly one
// vote is persisted; on any rejection nothing is written.
func (uc SubmitVoteUseCase) Execute(ctx context.Context, cmd SubmitVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)
	userID := strings.TrimSpace(cmd.UserID)
	optionID := strings.TrimSpace(cmd.OptionID)

	if pollID == "" || userID == "" || optionID == "" {
		logger.Warn("vote submit validation failed",
			"event", "vote_submit_validation_failed",
			"module", "poll-operations/poll-service",
			"layer", "application",
			"poll_id", pollID,
			"user_id", userID,
		)
		return entities.Vote{}, domainerrors.ErrInvalidVoteInput
	}

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !poll.IsActive {
		logger.Info("vote refused on inactive poll",
			"event", "vote_submit_poll_inactive",
			"module", "poll-operations/poll-service",
			"layer", "application",
			"poll_id", pollID,
			"user_id", userID,
		)
		return entities.Vote{}, domainerrors.ErrPollInactive
	}
	if !poll.HasOption(optionID) {
		return entities.Vote{}, domainerrors.ErrInvalidOption
	}

	if _, found, err := uc.Votes.GetVoteByVoter(ctx, pollID, userID); err != nil {
		return entities.Vote{}, err
	} else if found {
		return entities.Vote{}, domainerrors.ErrDuplicateVote
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	now := uc.Clock.Now().UTC()
	vote := entities.Vote{
		VoteID:     voteID,
		PollID:     pollID,
		UserID:     userID,
		OptionID:   optionID,
		Username:   strings.TrimSpace(cmd.Username),
		OptionText: poll.OptionText(optionID),
		CreatedAt:  now,
	}
	if err := uc.Votes.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			// Lost the race against another submission by the same user.
			return entities.Vote{}, domainerrors.ErrDuplicateVote
		}
		return entities.Vote{}, err
	}

	if err := appendVoteEvent(ctx, uc.Outbox, uc.IDGen, vote, now); err != nil {
		return entities.Vote{}, err
	}

	logger.Info("vote admitted",
		"event", "vote_admitted",
		"module", "poll-operations/poll-service",
		"layer", "application",
		"vote_id", vote.VoteID,
		"poll_id", vote.PollID,
		"user_id", vote.UserID,
		"option_id", vote.OptionID,
	)
	return vote, nil
}
