package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/ports"
)

// UserService implements account queries and removal.
type UserService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	log      zerolog.Logger
}

func NewUserService(users ports.UserRepository, sessions ports.SessionRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, sessions: sessions, log: log}
}

// Balance returns the account snapshot for username.
func (s *UserService) Balance(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// Remove deletes the account and cascades to its session records. Sessions
// go first: once the owner row is gone no token of theirs may keep
// resolving, so a failure between the two steps must leave the account
// intact rather than leave live sessions for a deleted owner.
func (s *UserService) Remove(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteAllByOwner(ctx, user.UID); err != nil {
		return fmt.Errorf("remove user: cascade sessions: %w", err)
	}

	if err := s.users.Delete(ctx, user.UID); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}

	s.log.Info().Str("username", username).Msg("account removed")
	return nil
}
