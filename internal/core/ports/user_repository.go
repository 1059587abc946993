package ports

import (
	"context"

	"github.com/srushti128/kodbank/internal/core/domain"
)

// UserRepository defines the interface for account persistence.
// Create must rely on the store's unique indexes as the authoritative
// duplicate check and return domain.ErrUserExists on violation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByUID(ctx context.Context, uid string) (*domain.User, error)
	Delete(ctx context.Context, uid string) error
}
