package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/srushti128/kodbank/internal/api/metrics"
	"github.com/srushti128/kodbank/internal/api/middleware"
	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	tokenTTL    time.Duration
}

func NewAuthHandler(authService ports.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL}
}

// Register creates a new Customer account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "registration successful"})
}

// Login checks credentials and issues a session token. The token travels
// both in the response body and in an httpOnly cookie scoped to the
// validity window.
//
// @Summary      Log in and receive a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		// A missing user and a wrong password are indistinguishable to
		// the caller.
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.SessionsIssuedTotal.Inc()

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Username:  session.User.Username,
		Role:      session.User.Role,
	})
}

// Logout revokes the presented session and clears the cookie. It reports
// success whether or not a matching record existed: logout is a revocation
// signal, not a query.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	tokenValue := middleware.ExtractToken(c)

	if err := h.authService.Logout(c.Request().Context(), tokenValue); err == nil && tokenValue != "" {
		metrics.SessionsRevokedTotal.WithLabelValues("logout").Inc()
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}
