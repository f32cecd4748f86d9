package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

type ResultsUseCase struct {
	Polls ports.PollRepository
	Votes ports.VoteRepository
}

// PollResults recomputes the tally from stored votes on every call; nothing
// is cached and nothing is written, so repeated calls over unchanged votes
// return identical output. Reading results before the creator publishes them
// is restricted to the creator.
func (uc ResultsUseCase) PollResults(ctx context.Context, pollID string, requesterID string) (entities.PollResults, error) {
	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return entities.PollResults{}, err
	}
	if !poll.ResultsPublished && poll.CreatedBy != strings.TrimSpace(requesterID) {
		return entities.PollResults{}, domainerrors.ErrResultsNotPublished
	}

	votes, err := uc.Votes.ListVotesByPoll(ctx, poll.PollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	return Tally(poll, votes), nil
}

// Tally derives per-option counts for poll from votes. Every option is
// present with a zero count even when unvoted; votes referencing an option id
// outside the poll's current option set are skipped rather than failing the
// whole computation. The leading option is the strictly-largest count; ties
// resolve to the first tied option in poll option order, and no option leads
// an empty tally.
func Tally(poll entities.Poll, votes []entities.Vote) entities.PollResults {
	counts := make(map[string]int, len(poll.Options))
	for _, option := range poll.Options {
		counts[option.OptionID] = 0
	}

	total := 0
	for _, vote := range votes {
		if _, ok := counts[vote.OptionID]; !ok {
			continue
		}
		counts[vote.OptionID]++
		total++
	}

	results := entities.PollResults{
		PollID:  poll.PollID,
		Total:   total,
		Options: make([]entities.OptionTally, 0, len(poll.Options)),
	}
	best := 0
	for _, option := range poll.Options {
		count := counts[option.OptionID]
		percentage := 0.0
		if total > 0 {
			percentage = float64(count) / float64(total) * 100
		}
		results.Options = append(results.Options, entities.OptionTally{
			OptionID:   option.OptionID,
			Text:       option.Text,
			Votes:      count,
			Percentage: percentage,
		})
		if total > 0 && count > best {
			best = count
			results.LeadingOptionID = option.OptionID
		}
	}
	return results
}
