package httpadapter

import (
	"context"
	"log/slog"

	"ballotbox/contexts/identity-access/user-directory/application/commands"
	"ballotbox/contexts/identity-access/user-directory/application/queries"
	"ballotbox/contexts/identity-access/user-directory/domain/entities"
	httptransport "ballotbox/contexts/identity-access/user-directory/transport/http"
)

type Handler struct {
	CreateUser commands.CreateUserUseCase
	Users      queries.UsersUseCase
	Logger     *slog.Logger
}

func (h Handler) CreateUserHandler(
	ctx context.Context,
	req httptransport.CreateUserRequest,
) (httptransport.UserResponse, error) {
	user, err := h.CreateUser.Execute(ctx, commands.CreateUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) GetUserHandler(ctx context.Context, userID string) (httptransport.UserResponse, error) {
	user, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) FindUserByEmailHandler(ctx context.Context, email string) (httptransport.UserResponse, error) {
	user, err := h.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) ListUsersHandler(ctx context.Context) (httptransport.UserListResponse, error) {
	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	items := make([]httptransport.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, mapUser(user))
	}
	return httptransport.UserListResponse{Items: items}, nil
}

func mapUser(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
