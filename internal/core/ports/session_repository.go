package ports

import (
	"context"
	"time"

	"github.com/srushti128/kodbank/internal/core/domain"
)

// SessionRepository defines the interface for session-record persistence.
//
// FindActive must treat a record whose expiry has passed as absent even if
// it has not been deleted yet (query-time filtering). DeleteAllByOwner is
// the cascade invoked when an account is removed. DeleteExpired exists for
// the background sweep and is never on a request path.
type SessionRepository interface {
	Create(ctx context.Context, tokenValue, ownerUID string, expiry time.Time) (*domain.SessionRecord, error)
	FindActive(ctx context.Context, tokenValue string) (*domain.SessionRecord, error)
	DeleteByToken(ctx context.Context, tokenValue string) error
	DeleteAllByOwner(ctx context.Context, ownerUID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
