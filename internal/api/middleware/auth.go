package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/srushti128/kodbank/internal/api/metrics"
	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/token"
)

// TokenCookie is the cookie the login handler sets and this middleware reads.
const TokenCookie = "kodbank_token"

// validateTimeout bounds the codec+store validation per request. A lookup
// that times out is treated as unauthenticated (fail-closed), never as valid.
const validateTimeout = 5 * time.Second

// TokenValidator is the slice of the auth service this middleware needs.
type TokenValidator interface {
	Validate(ctx context.Context, tokenValue string) (token.Claims, error)
}

// Auth validates the session token and injects the decoded identity into
// the echo context under "username", "role", "uid", and "token".
//
// Every rejection is rendered as the same 401 "not authenticated" so the
// response is useless as an oracle; the precise reason goes to logs and the
// auth_failures_total counter. An absent token short-circuits before the
// validator is called, so no store round-trip happens for it.
func Auth(validator TokenValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenValue := ExtractToken(c)
			if tokenValue == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), validateTimeout)
			defer cancel()

			claims, err := validator.Validate(ctx, tokenValue)
			if err != nil {
				reason := failureReason(err)
				metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()

				evt := log.Debug()
				if reason == "store_error" {
					// Ambiguous store state is rejected, but loudly.
					evt = log.Error().Err(err)
				}
				evt.Str("reason", reason).
					Str("path", c.Path()).
					Msg("token rejected")

				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			c.Set("username", claims.Subject)
			c.Set("role", claims.Role)
			c.Set("uid", claims.OwnerUID)
			c.Set("token", tokenValue)

			return next(c)
		}
	}
}

// ExtractToken pulls the session token from its cookie, falling back to an
// Authorization bearer header. The validator itself is carrier-agnostic.
func ExtractToken(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// failureReason classifies a validation error for logs and metrics only;
// it never reaches the response body.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "revoked"
	default:
		return "store_error"
	}
}
