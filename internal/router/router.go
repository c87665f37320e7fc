package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"todoapp/internal/handler"
	"todoapp/internal/metrics"
)

// Welcome is the body of GET /.
type Welcome struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

var welcome = Welcome{
	Message: "Welcome to the Todo App API",
	Endpoints: []string{
		"GET /todos - Get all todos",
		"GET /todos/{id} - Get a specific todo",
		"POST /todos - Create a new todo",
		"PUT /todos/{id} - Update a todo",
		"DELETE /todos/{id} - Delete a todo",
		"GET /todos/completed - Get completed todos",
		"GET /todos/pending - Get pending todos",
		"PATCH /todos/{id}/toggle - Mark a todo complete or incomplete",
		"GET /stats - Get todo stats",
	},
}

// Register wires routes and middleware. requireAuth guards every route that
// acts on behalf of a user.
func Register(
	e *echo.Echo,
	m *metrics.Metrics,
	requireAuth echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	todoHandler *handler.TodoHandler,
) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(m.Middleware())

	e.Binder = &StrictBinder{}
	e.Validator = NewValidator()

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, welcome)
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// Secured routes
	e.GET("/auth/me", userHandler.Me, requireAuth)
	e.GET("/stats", todoHandler.Stats, requireAuth)

	todos := e.Group("/todos", requireAuth)
	todos.GET("", todoHandler.List)
	todos.POST("", todoHandler.Create)
	todos.GET("/completed", todoHandler.ListCompleted)
	todos.GET("/pending", todoHandler.ListPending)
	todos.GET("/:id", todoHandler.Get)
	todos.PUT("/:id", todoHandler.Update)
	todos.DELETE("/:id", todoHandler.Delete)
	todos.PATCH("/:id/toggle", todoHandler.Toggle)
}
