package httpadapter

import (
	"context"
	"log/slog"

	"ballotbox/contexts/poll-operations/poll-service/application/commands"
	"ballotbox/contexts/poll-operations/poll-service/application/queries"
	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	httptransport "ballotbox/contexts/poll-operations/poll-service/transport/http"
)

type Handler struct {
	CreatePoll   commands.CreatePollUseCase
	SetPollFlags commands.SetPollFlagsUseCase
	DeletePoll   commands.DeletePollUseCase
	SubmitVote   commands.SubmitVoteUseCase
	Polls        queries.PollsUseCase
	Votes        queries.VotesUseCase
	Results      queries.ResultsUseCase
	Logger       *slog.Logger
}

func (h Handler) CreatePollHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreatePollRequest,
) (httptransport.PollResponse, error) {
	poll, err := h.CreatePoll.Execute(ctx, commands.CreatePollCommand{
		Title:           req.Title,
		Description:     req.Description,
		OptionTexts:     req.Options,
		CreatorID:       userID,
		CreatorUsername: req.CreatorUsername,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) UpdatePollHandler(
	ctx context.Context,
	pollID string,
	userID string,
	req httptransport.UpdatePollRequest,
) (httptransport.PollResponse, error) {
	poll, err := h.SetPollFlags.Execute(ctx, commands.SetPollFlagsCommand{
		PollID:           pollID,
		RequesterID:      userID,
		IsActive:         req.IsActive,
		ResultsPublished: req.ResultsPublished,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) DeletePollHandler(ctx context.Context, pollID string, userID string) error {
	return h.DeletePoll.Execute(ctx, commands.DeletePollCommand{
		PollID:      pollID,
		RequesterID: userID,
	})
}

func (h Handler) GetPollHandler(ctx context.Context, pollID string) (httptransport.PollResponse, error) {
	poll, err := h.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) ListPollsHandler(ctx context.Context) (httptransport.PollListResponse, error) {
	polls, err := h.Polls.ListPolls(ctx)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	return httptransport.PollListResponse{Items: mapPolls(polls)}, nil
}

func (h Handler) AttendedPollsHandler(ctx context.Context, userID string) (httptransport.PollListResponse, error) {
	polls, err := h.Polls.AttendedPolls(ctx, userID)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	return httptransport.PollListResponse{Items: mapPolls(polls)}, nil
}

func (h Handler) PollResultsHandler(
	ctx context.Context,
	pollID string,
	userID string,
) (httptransport.PollResultsResponse, error) {
	results, err := h.Results.PollResults(ctx, pollID, userID)
	if err != nil {
		return httptransport.PollResultsResponse{}, err
	}
	options := make([]httptransport.OptionTallyResponse, 0, len(results.Options))
	for _, tally := range results.Options {
		options = append(options, httptransport.OptionTallyResponse{
			OptionID:   tally.OptionID,
			Text:       tally.Text,
			Votes:      tally.Votes,
			Percentage: tally.Percentage,
		})
	}
	return httptransport.PollResultsResponse{
		PollID:          results.PollID,
		TotalVotes:      results.Total,
		LeadingOptionID: results.LeadingOptionID,
		Options:         options,
	}, nil
}

func (h Handler) SubmitVoteHandler(
	ctx context.Context,
	userID string,
	req httptransport.SubmitVoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.SubmitVote.Execute(ctx, commands.SubmitVoteCommand{
		PollID:   req.PollID,
		UserID:   userID,
		OptionID: req.OptionID,
		Username: req.Username,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(vote), nil
}

func (h Handler) ListVotesHandler(ctx context.Context) (httptransport.VoteListResponse, error) {
	votes, err := h.Votes.ListVotes(ctx)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	return httptransport.VoteListResponse{Items: mapVotes(votes)}, nil
}

func (h Handler) VotesByPollHandler(ctx context.Context, pollID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Votes.VotesByPoll(ctx, pollID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	return httptransport.VoteListResponse{Items: mapVotes(votes)}, nil
}

func (h Handler) VotesByUserHandler(ctx context.Context, userID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Votes.VotesByUser(ctx, userID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	return httptransport.VoteListResponse{Items: mapVotes(votes)}, nil
}

func (h Handler) SummaryHandler(ctx context.Context) (httptransport.SummaryResponse, error) {
	summary, err := h.Polls.Summary(ctx)
	if err != nil {
		return httptransport.SummaryResponse{}, err
	}
	return httptransport.SummaryResponse{
		TotalPolls:     summary.TotalPolls,
		TotalVotes:     summary.TotalVotes,
		PublishedPolls: summary.PublishedPolls,
	}, nil
}

func mapPoll(poll entities.Poll) httptransport.PollResponse {
	options := make([]httptransport.OptionResponse, 0, len(poll.Options))
	for _, option := range poll.Options {
		options = append(options, httptransport.OptionResponse{
			OptionID: option.OptionID,
			Text:     option.Text,
		})
	}
	return httptransport.PollResponse{
		PollID:            poll.PollID,
		Title:             poll.Title,
		Description:       poll.Description,
		Options:           options,
		CreatedBy:         poll.CreatedBy,
		CreatedByUsername: poll.CreatedByUsername,
		IsActive:          poll.IsActive,
		ResultsPublished:  poll.ResultsPublished,
		CreatedAt:         poll.CreatedAt,
		UpdatedAt:         poll.UpdatedAt,
	}
}

func mapPolls(polls []entities.Poll) []httptransport.PollResponse {
	items := make([]httptransport.PollResponse, 0, len(polls))
	for _, poll := range polls {
		items = append(items, mapPoll(poll))
	}
	return items
}

func mapVote(vote entities.Vote) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		VoteID:     vote.VoteID,
		PollID:     vote.PollID,
		UserID:     vote.UserID,
		OptionID:   vote.OptionID,
		Username:   vote.Username,
		OptionText: vote.OptionText,
		CreatedAt:  vote.CreatedAt,
	}
}

func mapVotes(votes []entities.Vote) []httptransport.VoteResponse {
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, mapVote(vote))
	}
	return items
}
