package pollservice

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	httptransport "ballotbox/contexts/poll-operations/poll-service/transport/http"
)

func newTestPoll(t *testing.T, module Module, creatorID string) httptransport.PollResponse {
	t.Helper()
	poll, err := module.Handler.CreatePollHandler(context.Background(), creatorID, httptransport.CreatePollRequest{
		Title:           "Team lunch",
		Description:     "Where should we go on Friday?",
		Options:         []string{"Pizza", "Sushi", "Tacos"},
		CreatorUsername: "casey",
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	return poll
}

func TestCreatePollAssignsCodeAndDefaults(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	if len(poll.PollID) != 6 {
		t.Fatalf("expected 6-char poll code, got %q", poll.PollID)
	}
	for _, r := range poll.PollID {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			t.Fatalf("poll code %q contains %q", poll.PollID, r)
		}
	}
	if !poll.IsActive || poll.ResultsPublished {
		t.Fatalf("expected active unpublished poll, got active=%v published=%v", poll.IsActive, poll.ResultsPublished)
	}
	if len(poll.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(poll.Options))
	}
	seen := make(map[string]struct{})
	for _, option := range poll.Options {
		if option.OptionID == "" {
			t.Fatalf("option %q has empty id", option.Text)
		}
		if _, dup := seen[option.OptionID]; dup {
			t.Fatalf("duplicate option id %s", option.OptionID)
		}
		seen[option.OptionID] = struct{}{}
	}
}

func TestCreatePollRejectsBadDefinitions(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	cases := []struct {
		name string
		req  httptransport.CreatePollRequest
	}{
		{"missing title", httptransport.CreatePollRequest{Description: "d", Options: []string{"a", "b"}}},
		{"missing description", httptransport.CreatePollRequest{Title: "t", Options: []string{"a", "b"}}},
		{"one option", httptransport.CreatePollRequest{Title: "t", Description: "d", Options: []string{"a"}}},
		{"blank option", httptransport.CreatePollRequest{Title: "t", Description: "d", Options: []string{"a", "  "}}},
		{"too many options", httptransport.CreatePollRequest{Title: "t", Description: "d", Options: []string{
			"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11",
		}}},
	}
	for _, tc := range cases {
		if _, err := module.Handler.CreatePollHandler(context.Background(), "creator-1", tc.req); !errors.Is(err, domainerrors.ErrInvalidPollInput) {
			t.Fatalf("%s: expected ErrInvalidPollInput, got %v", tc.name, err)
		}
	}
}

func TestSubmitVoteAdmitsOncePerUser(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	vote, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: poll.Options[1].OptionID,
		Username: "val",
	})
	if err != nil {
		t.Fatalf("submit vote failed: %v", err)
	}
	if vote.OptionText != "Sushi" {
		t.Fatalf("expected denormalized option text Sushi, got %q", vote.OptionText)
	}

	_, err = module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: poll.Options[0].OptionID,
	})
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}

	votes, err := module.Handler.VotesByPollHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("votes by poll failed: %v", err)
	}
	if len(votes.Items) != 1 {
		t.Fatalf("expected exactly 1 vote after duplicate rejection, got %d", len(votes.Items))
	}
}

func TestSubmitVoteRejections(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	if _, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   "ZZZZZZ",
		OptionID: poll.Options[0].OptionID,
	}); !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}

	if _, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: "not-an-option",
	}); !errors.Is(err, domainerrors.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}

	inactive := false
	if _, err := module.Handler.UpdatePollHandler(context.Background(), poll.PollID, "creator-1", httptransport.UpdatePollRequest{
		IsActive: &inactive,
	}); err != nil {
		t.Fatalf("deactivate poll failed: %v", err)
	}
	if _, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: poll.Options[0].OptionID,
	}); !errors.Is(err, domainerrors.ErrPollInactive) {
		t.Fatalf("expected ErrPollInactive, got %v", err)
	}
}

func TestConcurrentDuplicateVotesAdmitExactlyOne(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		optionID := poll.Options[i%len(poll.Options)].OptionID
		go func() {
			defer wg.Done()
			_, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
				PollID:   poll.PollID,
				OptionID: optionID,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		if !errors.Is(err, domainerrors.ErrDuplicateVote) {
			t.Fatalf("unexpected error under concurrency: %v", err)
		}
	}
	if admitted != 1 {
		t.Fatalf("expected exactly 1 admitted vote, got %d", admitted)
	}

	votes, err := module.Handler.VotesByPollHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("votes by poll failed: %v", err)
	}
	if len(votes.Items) != 1 {
		t.Fatalf("expected 1 stored vote, got %d", len(votes.Items))
	}
}

func TestResultsGatingAndTally(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	for i, voter := range []string{"voter-1", "voter-2", "voter-3"} {
		optionID := poll.Options[0].OptionID
		if i == 2 {
			optionID = poll.Options[1].OptionID
		}
		if _, err := module.Handler.SubmitVoteHandler(context.Background(), voter, httptransport.SubmitVoteRequest{
			PollID:   poll.PollID,
			OptionID: optionID,
		}); err != nil {
			t.Fatalf("vote %s failed: %v", voter, err)
		}
	}

	if _, err := module.Handler.PollResultsHandler(context.Background(), poll.PollID, "voter-1"); !errors.Is(err, domainerrors.ErrResultsNotPublished) {
		t.Fatalf("expected ErrResultsNotPublished for non-creator, got %v", err)
	}

	creatorView, err := module.Handler.PollResultsHandler(context.Background(), poll.PollID, "creator-1")
	if err != nil {
		t.Fatalf("creator results before publish failed: %v", err)
	}
	if creatorView.TotalVotes != 3 {
		t.Fatalf("expected 3 votes, got %d", creatorView.TotalVotes)
	}

	published := true
	if _, err := module.Handler.UpdatePollHandler(context.Background(), poll.PollID, "creator-1", httptransport.UpdatePollRequest{
		ResultsPublished: &published,
	}); err != nil {
		t.Fatalf("publish results failed: %v", err)
	}

	results, err := module.Handler.PollResultsHandler(context.Background(), poll.PollID, "voter-1")
	if err != nil {
		t.Fatalf("results after publish failed: %v", err)
	}
	if results.TotalVotes != 3 {
		t.Fatalf("expected total 3, got %d", results.TotalVotes)
	}
	if results.LeadingOptionID != poll.Options[0].OptionID {
		t.Fatalf("expected option %s leading, got %s", poll.Options[0].OptionID, results.LeadingOptionID)
	}
	if results.Options[0].Votes != 2 || results.Options[1].Votes != 1 || results.Options[2].Votes != 0 {
		t.Fatalf("unexpected counts: %+v", results.Options)
	}
	if results.Options[2].Percentage != 0 {
		t.Fatalf("expected 0%% for unvoted option, got %f", results.Options[2].Percentage)
	}

	again, err := module.Handler.PollResultsHandler(context.Background(), poll.PollID, "voter-2")
	if err != nil {
		t.Fatalf("repeat results failed: %v", err)
	}
	if again.TotalVotes != results.TotalVotes || again.LeadingOptionID != results.LeadingOptionID {
		t.Fatalf("expected identical tally on repeated reads")
	}
}

func TestUpdatePollOwnershipAndIdempotence(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	published := true
	if _, err := module.Handler.UpdatePollHandler(context.Background(), poll.PollID, "intruder", httptransport.UpdatePollRequest{
		ResultsPublished: &published,
	}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-creator, got %v", err)
	}

	active := true
	unchanged, err := module.Handler.UpdatePollHandler(context.Background(), poll.PollID, "creator-1", httptransport.UpdatePollRequest{
		IsActive: &active,
	})
	if err != nil {
		t.Fatalf("no-op toggle failed: %v", err)
	}
	if !unchanged.IsActive || unchanged.ResultsPublished {
		t.Fatalf("no-op toggle changed state: %+v", unchanged)
	}

	if _, err := module.Handler.UpdatePollHandler(context.Background(), poll.PollID, "creator-1", httptransport.UpdatePollRequest{}); !errors.Is(err, domainerrors.ErrInvalidPollInput) {
		t.Fatalf("expected ErrInvalidPollInput for empty update, got %v", err)
	}
}

func TestDeletePollCascadesVotes(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	poll := newTestPoll(t, module, "creator-1")

	if _, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: poll.Options[0].OptionID,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if err := module.Handler.DeletePollHandler(context.Background(), poll.PollID, "intruder"); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := module.Handler.DeletePollHandler(context.Background(), poll.PollID, "creator-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := module.Handler.GetPollHandler(context.Background(), poll.PollID); !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound after delete, got %v", err)
	}
	if _, err := module.Handler.PollResultsHandler(context.Background(), poll.PollID, "creator-1"); !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound for results after delete, got %v", err)
	}
	votes, err := module.Handler.VotesByPollHandler(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("votes by poll failed: %v", err)
	}
	if len(votes.Items) != 0 {
		t.Fatalf("expected no orphan votes, got %d", len(votes.Items))
	}
	attended, err := module.Handler.AttendedPollsHandler(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("attended polls failed: %v", err)
	}
	if len(attended.Items) != 0 {
		t.Fatalf("expected no attended polls after cascade, got %d", len(attended.Items))
	}
}

func TestAttendedPollsAreDistinct(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	first := newTestPoll(t, module, "creator-1")
	second := newTestPoll(t, module, "creator-2")

	for _, poll := range []httptransport.PollResponse{first, second} {
		if _, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
			PollID:   poll.PollID,
			OptionID: poll.Options[0].OptionID,
		}); err != nil {
			t.Fatalf("vote on %s failed: %v", poll.PollID, err)
		}
	}

	attended, err := module.Handler.AttendedPollsHandler(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("attended polls failed: %v", err)
	}
	if len(attended.Items) != 2 {
		t.Fatalf("expected 2 attended polls, got %d", len(attended.Items))
	}
}

func TestSummaryCounts(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	first := newTestPoll(t, module, "creator-1")
	newTestPoll(t, module, "creator-2")

	if _, err := module.Handler.SubmitVoteHandler(context.Background(), "voter-1", httptransport.SubmitVoteRequest{
		PollID:   first.PollID,
		OptionID: first.Options[0].OptionID,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	published := true
	if _, err := module.Handler.UpdatePollHandler(context.Background(), first.PollID, "creator-1", httptransport.UpdatePollRequest{
		ResultsPublished: &published,
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	summary, err := module.Handler.SummaryHandler(context.Background())
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalPolls != 2 || summary.TotalVotes != 1 || summary.PublishedPolls != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
