package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ballotbox/contexts/identity-access/user-directory/domain/entities"
	domainerrors "ballotbox/contexts/identity-access/user-directory/domain/errors"
	"ballotbox/contexts/identity-access/user-directory/ports"
)

type CreateUserCommand struct {
	Username string
	Email    string
	Password string
	Role     string
}

type CreateUserUseCase struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute registers a directory record. Email addresses are unique across the
// directory; the lookup gives a precise rejection and the store uniqueness
// closes the race between concurrent registrations.
func (uc CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (entities.User, error) {
	logger := resolveLogger(uc.Logger)
	username := strings.TrimSpace(cmd.Username)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	role := strings.ToLower(strings.TrimSpace(cmd.Role))
	if role == "" {
		role = entities.RoleUser
	}

	if username == "" || email == "" {
		logger.Warn("user create validation failed",
			"event", "user_create_validation_failed",
			"module", "identity-access/user-directory",
			"layer", "application",
			"username", username,
		)
		return entities.User{}, domainerrors.ErrInvalidUserInput
	}
	if !entities.IsValidRole(role) {
		return entities.User{}, domainerrors.ErrUnknownRole
	}

	if _, found, err := uc.Users.FindUserByEmail(ctx, email); err != nil {
		return entities.User{}, err
	} else if found {
		return entities.User{}, domainerrors.ErrEmailTaken
	}

	userID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	user := entities.User{
		UserID:    userID,
		Username:  username,
		Email:     email,
		Password:  cmd.Password,
		Role:      role,
		CreatedAt: uc.Clock.Now().UTC(),
	}
	if err := uc.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, err
	}

	logger.Info("user registered",
		"event", "user_registered",
		"module", "identity-access/user-directory",
		"layer", "application",
		"user_id", user.UserID,
		"role", user.Role,
	)
	return user, nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
