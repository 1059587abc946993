package domain

import (
	"errors"
	"time"
)

var (
	// ErrMissingToken: no credential was presented at all.
	ErrMissingToken = errors.New("missing credential")
	// ErrTokenMalformed: the string is not a parseable token.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignatureInvalid: the signature does not verify against the
	// server secret, regardless of expiry.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired: signature is fine but the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrSessionNotFound: no live server-side record backs the token, so it
	// is revoked or was never issued here.
	ErrSessionNotFound = errors.New("session revoked or unknown")
	// ErrDuplicateSession: unique-token constraint violation on insert.
	// Tokens are unique with overwhelming probability, so hitting this is a
	// programming error, not a user condition.
	ErrDuplicateSession = errors.New("duplicate session token")
)

// SessionRecord is the server-side row backing one issued token. Records are
// immutable once created: they are deleted on logout or swept after expiry,
// never updated. A record is live only while Expiry is in the future; lookups
// filter on expiry at query time rather than waiting for deletion.
type SessionRecord struct {
	ID        string
	Token     string
	OwnerUID  string
	Expiry    time.Time
	CreatedAt time.Time
}

// Active reports whether the record is still live at the given instant.
func (r *SessionRecord) Active(now time.Time) bool {
	return r.Expiry.After(now)
}

// IssuedSession is what a successful login hands back to the transport
// layer: the signed token, its expiry, and the authenticated user.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
