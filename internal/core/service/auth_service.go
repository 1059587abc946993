package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/ports"
	"github.com/srushti128/kodbank/internal/core/token"
)

// bcryptCost matches the cost the rest of the account tooling writes with.
const bcryptCost = 12

// AuthService implements registration, login, logout, and token validation.
//
// Login mints a signed token and persists a matching session record; the
// token is only usable while both the signature verifies and the record is
// still present, which is what makes logout an O(1) server-side revocation.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	codec    *token.Codec
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	codec *token.Codec,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Register creates a Customer account. Only the Customer role may
// self-register; requesting anything else is rejected outright. There is no
// pre-check read for duplicates — the store's unique indexes on username
// and email are the arbiter, and a constraint violation surfaces as
// domain.ErrUserExists.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if in.Role != "" && in.Role != domain.RoleCustomer {
		return nil, domain.ErrRoleNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Role:         domain.RoleCustomer,
		Balance:      domain.DefaultBalance,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Msg("account registered")
	return created, nil
}

// Login checks the credential pair and, on success, issues a session:
//
//  1. Look up the user and compare the bcrypt hash. A missing user and a
//     wrong password are both reported as ErrInvalidCredentials so the
//     response cannot be used to enumerate usernames.
//  2. Mint the signed token. A codec failure aborts before any persistence,
//     so no orphan record is ever written.
//  3. Persist the session record with the same token string and expiry. If
//     this fails the login fails: the minted token would never pass the
//     validator's store check, so advertising it would be a lie.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.IssuedSession, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	signed, expiry, err := s.codec.Issue(token.Claims{
		Subject:  user.Username,
		Role:     user.Role,
		OwnerUID: user.UID,
	}, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if _, err := s.sessions.Create(ctx, signed, user.UID, expiry); err != nil {
		return nil, fmt.Errorf("login: persist session: %w", err)
	}

	s.log.Info().
		Str("username", user.Username).
		Time("expiry", expiry).
		Msg("session issued")

	return &domain.IssuedSession{Token: signed, ExpiresAt: expiry, User: user}, nil
}

// Logout deletes the session record backing the token. It is a revocation
// signal, not a query: an absent record means the session is already gone,
// which is the state the caller asked for, and a storage failure is logged
// but not surfaced. Callers always see success.
func (s *AuthService) Logout(ctx context.Context, tokenValue string) error {
	if tokenValue == "" {
		return nil
	}

	err := s.sessions.DeleteByToken(ctx, tokenValue)
	switch {
	case err == nil:
		s.log.Info().Msg("session revoked")
	case errors.Is(err, domain.ErrSessionNotFound):
		s.log.Debug().Msg("logout for unknown token")
	default:
		s.log.Error().Err(err).Msg("logout: session delete failed")
	}
	return nil
}

// Validate performs the dual check, short-circuiting on the first failure:
//
//  1. Empty token → ErrMissingToken, with no store interaction at all.
//  2. Codec verify. Signature and expiry failures stay distinguishable here
//     so logs and metrics can tell them apart; the HTTP layer collapses
//     them into one uniform response.
//  3. Store lookup. A structurally valid, unexpired token whose record is
//     absent has been revoked (or was never issued here) and is rejected —
//     this is the check that makes logout meaningful. Store failures are
//     fail-closed: an error is never treated as a live session.
func (s *AuthService) Validate(ctx context.Context, tokenValue string) (token.Claims, error) {
	if tokenValue == "" {
		return token.Claims{}, domain.ErrMissingToken
	}

	claims, err := s.codec.Verify(tokenValue)
	if err != nil {
		return token.Claims{}, err
	}

	if _, err := s.sessions.FindActive(ctx, tokenValue); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return token.Claims{}, domain.ErrSessionNotFound
		}
		return token.Claims{}, fmt.Errorf("validate: session lookup: %w", err)
	}

	return claims, nil
}
