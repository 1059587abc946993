package ports

import (
	"context"

	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/token"
)

// RegisterInput carries the self-registration fields. Role may be empty;
// anything other than empty or Customer is rejected.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.IssuedSession, error)
	// Logout revokes the session record backing the token. It is
	// best-effort: an unknown token is not an error.
	Logout(ctx context.Context, tokenValue string) error
	// Validate performs the dual check — codec signature/expiry, then
	// store existence — and returns the decoded identity.
	Validate(ctx context.Context, tokenValue string) (token.Claims, error)
}
