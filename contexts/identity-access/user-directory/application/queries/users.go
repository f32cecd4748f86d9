package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/identity-access/user-directory/domain/entities"
	domainerrors "ballotbox/contexts/identity-access/user-directory/domain/errors"
	"ballotbox/contexts/identity-access/user-directory/ports"
)

type UsersUseCase struct {
	Users ports.UserRepository
}

func (uc UsersUseCase) GetUser(ctx context.Context, userID string) (entities.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.User{}, domainerrors.ErrInvalidUserInput
	}
	return uc.Users.GetUser(ctx, userID)
}

// FindUserByEmail resolves a directory record by email; an unknown address is
// ErrUserNotFound rather than an empty record.
func (uc UsersUseCase) FindUserByEmail(ctx context.Context, email string) (entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return entities.User{}, domainerrors.ErrInvalidUserInput
	}
	user, found, err := uc.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return entities.User{}, err
	}
	if !found {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (uc UsersUseCase) ListUsers(ctx context.Context) ([]entities.User, error) {
	return uc.Users.ListUsers(ctx)
}

func (uc UsersUseCase) CountUsers(ctx context.Context) (int64, error) {
	return uc.Users.CountUsers(ctx)
}
