// Package token implements the signed session-token codec: a pure
// encode/verify layer with no storage knowledge. Revocation is the session
// store's job; this package only answers "was this string minted by us and
// is it still within its validity window".
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/srushti128/kodbank/internal/core/domain"
)

// ErrEmptySecret is returned by NewCodec when no signing secret is
// configured. This is a startup failure, never a per-request one.
var ErrEmptySecret = errors.New("token: signing secret is empty")

// claimsVersion tags the claim layout so a future field change can be
// detected at verification time instead of drifting silently.
const claimsVersion = 1

// Claims is the fixed identity bundle embedded in every token.
type Claims struct {
	Subject  string // username
	Role     string
	OwnerUID string
}

// wireClaims is the on-the-wire JWT layout. Subject, issued-at and expiry
// live in the registered claims; the rest are private claims.
type wireClaims struct {
	Role    string `json:"role"`
	UID     string `json:"uid"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256-signed session tokens.
type Codec struct {
	secret []byte
}

// NewCodec builds a codec around the process-wide signing secret. An empty
// secret fails fast here so the service refuses to start rather than
// minting unverifiable tokens.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Issue encodes the claims with issued-at = now and expiry = now + validity,
// returning the signed string and the expiry instant. The caller persists
// the same expiry in the session record so token and record always agree.
func (c *Codec) Issue(cl Claims, validity time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiry := now.Add(validity)

	// A random jti keeps concurrent issuances for the same subject from
	// colliding: without it, two tokens minted within the same second
	// would be byte-identical and trip the unique-token constraint.
	jti, err := newJTI()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token id: %w", err)
	}

	wc := wireClaims{
		Role:    cl.Role,
		UID:     cl.OwnerUID,
		Version: claimsVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cl.Subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiry, nil
}

func newJTI() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// Verify parses and checks the token, returning the embedded claims. The
// failure mode is classified into exactly one of the domain sentinels:
// malformed, signature-invalid, or expired. A bad signature is reported as
// such even when the token is also past expiry.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	var wc wireClaims
	tkn, err := jwt.ParseWithClaims(tokenString, &wc, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case err == nil && tkn.Valid:
		// fall through to version check
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, domain.ErrTokenExpired
	default:
		return Claims{}, domain.ErrTokenMalformed
	}

	if wc.Version != claimsVersion {
		return Claims{}, domain.ErrTokenMalformed
	}

	return Claims{
		Subject:  wc.Subject,
		Role:     wc.Role,
		OwnerUID: wc.UID,
	}, nil
}
