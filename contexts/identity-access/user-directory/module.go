package userdirectory

import (
	"log/slog"

	httpadapter "ballotbox/contexts/identity-access/user-directory/adapters/http"
	"ballotbox/contexts/identity-access/user-directory/adapters/memory"
	"ballotbox/contexts/identity-access/user-directory/application/commands"
	"ballotbox/contexts/identity-access/user-directory/application/queries"
	"ballotbox/contexts/identity-access/user-directory/domain/entities"
	"ballotbox/contexts/identity-access/user-directory/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreateUser: commands.CreateUserUseCase{
				Users:  deps.Users,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Users: queries.UsersUseCase{
				Users: deps.Users,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.User, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Users:  store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
