package ports

import (
	"context"

	"github.com/srushti128/kodbank/internal/core/domain"
)

type UserService interface {
	// Balance returns the account snapshot for an authenticated subject.
	Balance(ctx context.Context, username string) (*domain.User, error)
	// Remove deletes the account and cascades to all of its session
	// records, so no orphaned token can keep resolving.
	Remove(ctx context.Context, username string) error
}
