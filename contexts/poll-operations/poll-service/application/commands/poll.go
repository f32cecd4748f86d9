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

const (
	minPollOptions = 2
	maxPollOptions = 10

	pollCodeLength         = 6
	pollCodeRetries        = 5
	escalatedPollCodeLen   = 8
	escalatedPollCodeTries = 5
)

// CreatePollCommand is the write-model input for poll creation.
type CreatePollCommand struct {
	Title           string
	Description     string
	OptionTexts     []string
	CreatorID       string
	CreatorUsername string
}

type CreatePollUseCase struct {
	Polls  ports.PollRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Codes  ports.CodeGenerator
	Logger *slog.Logger
}

// Execute validates the definition, allocates option ids and a collision-free
// short poll code, and persists the poll as (active, unpublished).
func (uc CreatePollUseCase) Execute(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	description := strings.TrimSpace(cmd.Description)
	creatorID := strings.TrimSpace(cmd.CreatorID)

	if title == "" || description == "" || creatorID == "" {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "poll-operations/poll-service",
			"layer", "application",
			"creator_id", creatorID,
		)
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}
	if len(cmd.OptionTexts) < minPollOptions || len(cmd.OptionTexts) > maxPollOptions {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	now := uc.Clock.Now().UTC()
	options := make([]entities.Option, 0, len(cmd.OptionTexts))
	for _, text := range cmd.OptionTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			return entities.Poll{}, domainerrors.ErrInvalidPollInput
		}
		optionID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Poll{}, err
		}
		options = append(options, entities.Option{OptionID: optionID, Text: text})
	}

	poll := entities.Poll{
		Title:             title,
		Description:       description,
		Options:           options,
		CreatedBy:         creatorID,
		CreatedByUsername: strings.TrimSpace(cmd.CreatorUsername),
		IsActive:          true,
		ResultsPublished:  false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	stored, err := uc.insertWithFreshCode(ctx, poll)
	if err != nil {
		return entities.Poll{}, err
	}

	if err := appendPollEvent(ctx, uc.Outbox, uc.IDGen, "poll.created", stored, now, nil); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll created",
		"event", "poll_created",
		"module", "poll-operations/poll-service",
		"layer", "application",
		"poll_id", stored.PollID,
		"creator_id", stored.CreatedBy,
		"option_count", len(stored.Options),
	)
	return stored, nil
}

// insertWithFreshCode allocates a short code, verifying uniqueness against the
// store with bounded retries and escalating to a longer code space when the
// short space keeps colliding. A concurrent insert racing on the same code
// surfaces as ErrConflict and consumes a retry.
func (uc CreatePollUseCase) insertWithFreshCode(ctx context.Context, poll entities.Poll) (entities.Poll, error) {
	attempt := func(length int, tries int) (entities.Poll, bool, error) {
		for i := 0; i < tries; i++ {
			code, err := uc.Codes.NewCode(ctx, length)
			if err != nil {
				return entities.Poll{}, false, err
			}
			if _, err := uc.Polls.GetPoll(ctx, code); err == nil {
				continue
			} else if !errors.Is(err, domainerrors.ErrPollNotFound) {
				return entities.Poll{}, false, err
			}
			poll.PollID = code
			err = uc.Polls.CreatePoll(ctx, poll)
			if err == nil {
				return poll, true, nil
			}
			if errors.Is(err, domainerrors.ErrConflict) {
				continue
			}
			return entities.Poll{}, false, err
		}
		return entities.Poll{}, false, nil
	}

	if stored, ok, err := attempt(pollCodeLength, pollCodeRetries); err != nil {
		return entities.Poll{}, err
	} else if ok {
		return stored, nil
	}
	if stored, ok, err := attempt(escalatedPollCodeLen, escalatedPollCodeTries); err != nil {
		return entities.Poll{}, err
	} else if ok {
		return stored, nil
	}
	return entities.Poll{}, domainerrors.ErrPollCodeSpaceExhaust
}

// SetPollFlagsCommand toggles the two creator-owned lifecycle flags. Nil
// fields are left unchanged; setting a flag to its current value is a no-op
// success.
type SetPollFlagsCommand struct {
	PollID           string
	RequesterID      string
	IsActive         *bool
	ResultsPublished *bool
}

type SetPollFlagsUseCase struct {
	Polls  ports.PollRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc SetPollFlagsUseCase) Execute(ctx context.Context, cmd SetPollFlagsCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)
	requesterID := strings.TrimSpace(cmd.RequesterID)
	if pollID == "" || requesterID == "" {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}
	if cmd.IsActive == nil && cmd.ResultsPublished == nil {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Poll{}, err
	}
	if poll.CreatedBy != requesterID {
		logger.Warn("poll flags change refused",
			"event", "poll_flags_not_authorized",
			"module", "poll-operations/poll-service",
			"layer", "application",
			"poll_id", pollID,
			"requester_id", requesterID,
		)
		return entities.Poll{}, domainerrors.ErrNotAuthorized
	}

	isActive := poll.IsActive
	resultsPublished := poll.ResultsPublished
	if cmd.IsActive != nil {
		isActive = *cmd.IsActive
	}
	if cmd.ResultsPublished != nil {
		resultsPublished = *cmd.ResultsPublished
	}
	if isActive == poll.IsActive && resultsPublished == poll.ResultsPublished {
		return poll, nil
	}

	now := uc.Clock.Now().UTC()
	updated, err := uc.Polls.UpdatePollFlags(ctx, pollID, isActive, resultsPublished, now)
	if err != nil {
		return entities.Poll{}, err
	}

	if err := appendPollEvent(ctx, uc.Outbox, uc.IDGen, "poll.updated", updated, now, map[string]any{
		"is_active":         updated.IsActive,
		"results_published": updated.ResultsPublished,
	}); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll flags changed",
		"event", "poll_flags_changed",
		"module", "poll-operations/poll-service",
		"layer", "application",
		"poll_id", updated.PollID,
		"is_active", updated.IsActive,
		"results_published", updated.ResultsPublished,
	)
	return updated, nil
}

type DeletePollCommand struct {
	PollID      string
	RequesterID string
}

type DeletePollUseCase struct {
	Polls  ports.PollRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute removes the poll and its votes as one unit. Only the creator may
// delete; the cascade guarantee lives in the repository.
func (uc DeletePollUseCase) Execute(ctx context.Context, cmd DeletePollCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)
	requesterID := strings.TrimSpace(cmd.RequesterID)
	if pollID == "" || requesterID == "" {
		return domainerrors.ErrInvalidPollInput
	}

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.CreatedBy != requesterID {
		return domainerrors.ErrNotAuthorized
	}

	if err := uc.Polls.DeletePollCascade(ctx, pollID); err != nil {
		return err
	}

	now := uc.Clock.Now().UTC()
	if err := appendPollEvent(ctx, uc.Outbox, uc.IDGen, "poll.deleted", poll, now, nil); err != nil {
		return err
	}

	logger.Info("poll deleted",
		"event", "poll_deleted",
		"module", "poll-operations/poll-service",
		"layer", "application",
		"poll_id", pollID,
		"requester_id", requesterID,
	)
	return nil
}
