package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/srushti128/kodbank/internal/api/metrics"
	"github.com/srushti128/kodbank/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Balance returns the authenticated account's balance.
//
// @Summary      Get the authenticated account's balance
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/user/balance [get]
func (h *UserHandler) Balance(c echo.Context) error {
	username, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Balance(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, balanceResponse{
		Username: user.Username,
		Balance:  user.Balance,
		Role:     user.Role,
	})
}

// Remove deletes an account and cascades to all of its sessions.
// Admin only.
//
// @Summary      Remove an account and revoke its sessions
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username to remove"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{username} [delete]
func (h *UserHandler) Remove(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	if err := h.userService.Remove(c.Request().Context(), username); err != nil {
		return err
	}

	metrics.SessionsRevokedTotal.WithLabelValues("cascade").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "account removed"})
}
