package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/srushti128/kodbank/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Collapses every authentication failure into one uniform 401 so the
//     response leaks nothing about why a token or credential was rejected.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. All token and
	// session failures share one message: no oracle for attackers.
	switch {
	case errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenSignatureInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrRoleNotAllowed):
		return http.StatusForbidden, "only Customer registration is allowed"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "username or email already exists"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
