package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"todoapp/internal/auth"
	"todoapp/internal/errors"
	"todoapp/internal/service"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Get the current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	current, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, errors.ErrUnauthorized)
	}

	// the resolved identity may come from cache; read the row itself
	user, err := h.svc.GetUser(c.Request().Context(), current.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
