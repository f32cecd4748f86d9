package ports

import (
	"context"
	"time"

	"ballotbox/contexts/identity-access/user-directory/domain/entities"
)

type UserRepository interface {
	// CreateUser is insert-only. Implementations enforce email uniqueness
	// and return ErrConflict on violation.
	CreateUser(ctx context.Context, user entities.User) error
	GetUser(ctx context.Context, userID string) (entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (entities.User, bool, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
