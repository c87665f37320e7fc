package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"todoapp/internal/auth"
	"todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/service"
)

// TodoHandler handles the owner-scoped todo endpoints. The auth middleware
// must run first; every call is made on behalf of the resolved user.
type TodoHandler struct {
	todoService service.TodoService
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(todoService service.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// CreateTodoRequest represents a new todo.
type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Description *string `json:"description"`
}

// UpdateTodoRequest is a partial update; absent fields are left unchanged.
type UpdateTodoRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=300"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func ownerID(c echo.Context) (uint, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return 0, errors.ErrUnauthorized
	}
	return user.ID, nil
}

// List godoc
// @Summary List todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	todos, err := h.todoService.List(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todos)
}

// ListCompleted godoc
// @Summary List completed todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos/completed [get]
func (h *TodoHandler) ListCompleted(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	todos, err := h.todoService.ListCompleted(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todos)
}

// ListPending godoc
// @Summary List pending todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos/pending [get]
func (h *TodoHandler) ListPending(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	todos, err := h.todoService.ListPending(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todos)
}

// Create godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTodoRequest true "Todo"
// @Success 200 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	todo, err := h.todoService.Create(c.Request().Context(), owner, req.Title, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

// Get godoc
// @Summary Get a todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Success 200 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{id} [get]
func (h *TodoHandler) Get(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	todo, err := h.todoService.Get(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

// Update godoc
// @Summary Update a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Param request body UpdateTodoRequest true "Fields to change"
// @Success 200 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{id} [put]
func (h *TodoHandler) Update(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	todo, err := h.todoService.Update(c.Request().Context(), owner, id, model.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

// Toggle godoc
// @Summary Flip a todo between completed and incomplete
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Success 200 {object} model.ToggleResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{id}/toggle [patch]
func (h *TodoHandler) Toggle(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.todoService.Toggle(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Delete godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Success 200 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	todo, err := h.todoService.Delete(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

// Stats godoc
// @Summary Summarise the current user's todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.TodoStats
// @Failure 401 {object} errors.ErrorResponse
// @Router /stats [get]
func (h *TodoHandler) Stats(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := h.todoService.Stats(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
