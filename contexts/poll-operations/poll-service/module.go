package pollservice

import (
	"log/slog"

	"ballotbox/contexts/poll-operations/poll-service/adapters/codes"
	httpadapter "ballotbox/contexts/poll-operations/poll-service/adapters/http"
	"ballotbox/contexts/poll-operations/poll-service/adapters/memory"
	"ballotbox/contexts/poll-operations/poll-service/application/commands"
	"ballotbox/contexts/poll-operations/poll-service/application/queries"
	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	"ballotbox/contexts/poll-operations/poll-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls  ports.PollRepository
	Votes  ports.VoteRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Codes  ports.CodeGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreatePoll: commands.CreatePollUseCase{
				Polls:  deps.Polls,
				Outbox: deps.Outbox,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Codes:  deps.Codes,
				Logger: deps.Logger,
			},
			SetPollFlags: commands.SetPollFlagsUseCase{
				Polls:  deps.Polls,
				Outbox: deps.Outbox,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			DeletePoll: commands.DeletePollUseCase{
				Polls:  deps.Polls,
				Outbox: deps.Outbox,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			SubmitVote: commands.SubmitVoteUseCase{
				Polls:  deps.Polls,
				Votes:  deps.Votes,
				Outbox: deps.Outbox,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Polls: queries.PollsUseCase{
				Polls: deps.Polls,
				Votes: deps.Votes,
			},
			Votes: queries.VotesUseCase{
				Votes: deps.Votes,
			},
			Results: queries.ResultsUseCase{
				Polls: deps.Polls,
				Votes: deps.Votes,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Poll, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Polls:  store,
		Votes:  store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
		Codes:  codes.NewGenerator(),
		Logger: logger,
	})
	module.Store = store
	return module
}
