package queries

import (
	"testing"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
)

func tallyPoll() entities.Poll {
	return entities.Poll{
		PollID: "ABC123",
		Options: []entities.Option{
			{OptionID: "opt-a", Text: "A"},
			{OptionID: "opt-b", Text: "B"},
			{OptionID: "opt-c", Text: "C"},
		},
	}
}

func TestTallyEmptyPollHasNoLeader(t *testing.T) {
	results := Tally(tallyPoll(), nil)
	if results.Total != 0 {
		t.Fatalf("expected total 0, got %d", results.Total)
	}
	if results.LeadingOptionID != "" {
		t.Fatalf("expected no leader on empty tally, got %s", results.LeadingOptionID)
	}
	if len(results.Options) != 3 {
		t.Fatalf("expected every option present, got %d", len(results.Options))
	}
	for _, option := range results.Options {
		if option.Votes != 0 || option.Percentage != 0 {
			t.Fatalf("expected zeroed tally, got %+v", option)
		}
	}
}

func TestTallyTieResolvesToFirstOptionInOrder(t *testing.T) {
	votes := []entities.Vote{
		{VoteID: "v1", OptionID: "opt-b"},
		{VoteID: "v2", OptionID: "opt-c"},
	}
	results := Tally(tallyPoll(), votes)
	if results.Total != 2 {
		t.Fatalf("expected total 2, got %d", results.Total)
	}
	if results.LeadingOptionID != "opt-b" {
		t.Fatalf("expected first tied option opt-b to lead, got %s", results.LeadingOptionID)
	}
}

func TestTallySkipsVotesForUnknownOptions(t *testing.T) {
	votes := []entities.Vote{
		{VoteID: "v1", OptionID: "opt-a"},
		{VoteID: "v2", OptionID: "opt-removed"},
		{VoteID: "v3", OptionID: "opt-a"},
	}
	results := Tally(tallyPoll(), votes)
	if results.Total != 2 {
		t.Fatalf("expected stale vote skipped, total 2, got %d", results.Total)
	}
	if results.Options[0].Percentage != 100 {
		t.Fatalf("expected 100%% for opt-a, got %f", results.Options[0].Percentage)
	}
	if results.LeadingOptionID != "opt-a" {
		t.Fatalf("expected opt-a leading, got %s", results.LeadingOptionID)
	}
}
