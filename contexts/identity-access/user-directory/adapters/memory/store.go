package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/identity-access/user-directory/domain/entities"
	domainerrors "ballotbox/contexts/identity-access/user-directory/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users map[string]entities.User
	// emailIndex maps lowercased email to user id, mirroring the unique
	// index the postgres adapter relies on.
	emailIndex map[string]string
}

func NewStore(seed []entities.User) *Store {
	users := make(map[string]entities.User, len(seed))
	emails := make(map[string]string, len(seed))
	for _, user := range seed {
		users[user.UserID] = user
		emails[strings.ToLower(user.Email)] = user.UserID
	}
	return &Store{
		users:      users,
		emailIndex: emails,
	}
}

func (s *Store) CreateUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := s.emailIndex[email]; exists {
		return domainerrors.ErrConflict
	}
	userID := strings.TrimSpace(user.UserID)
	s.users[userID] = user
	s.emailIndex[email] = userID
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.emailIndex[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return entities.User{}, false, nil
	}
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, false, nil
	}
	return user, true, nil
}

func (s *Store) ListUsers(_ context.Context) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		items = append(items, user)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].UserID < items[j].UserID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
