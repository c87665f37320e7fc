package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todoapp/internal/auth"
	"todoapp/internal/db/dbtest"
	"todoapp/internal/handler"
	"todoapp/internal/metrics"
	"todoapp/internal/model"
	"todoapp/internal/repository"
	"todoapp/internal/service"
)

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gormDB := dbtest.New(t)

	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)

	hasher := auth.NewPasswordHasher(auth.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1})
	jwtService := auth.NewJWTService("router-test-secret")

	userService := service.NewUserService(userRepo, nil)
	authService := service.NewAuthService(userRepo, nil, hasher, jwtService, time.Hour)
	todoService := service.NewTodoService(todoRepo)

	m := metrics.New()
	e := echo.New()
	Register(e, m,
		auth.Middleware(auth.NewResolver(jwtService, userService), m),
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewTodoHandler(todoService),
	)
	return &testServer{e: e, db: gormDB}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test"}`, email, password))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", "", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func (s *testServer) createTodo(t *testing.T, token, title string) model.Todo {
	t.Helper()
	rec := s.do(http.MethodPost, "/todos", token, fmt.Sprintf(`{"title":%q}`, title))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var todo model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	return todo
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/register", "", `{"email":"a@x.com","password":"pw123","name":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "A", body["name"])
	assert.Equal(t, true, body["is_active"])
	assert.NotNil(t, body["id"])
	assert.NotNil(t, body["created_at"])
	assert.NotContains(t, body, "hashed_password")
	assert.NotContains(t, rec.Body.String(), "pw123")

	rec = s.do(http.MethodPost, "/auth/register", "", `{"email":"A@X.com","password":"other","name":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", decodeError(t, rec))
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{"email":"a@x.com"}`},
		{"bad email", `{"email":"not-an-email","password":"pw123"}`},
		{"unknown field", `{"email":"a@x.com","password":"pw123","is_admin":true}`},
		{"malformed json", `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec))
		})
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")

	token := s.login(t, "a@x.com", "pw123")
	assert.NotEmpty(t, token)

	wrongPassword := s.do(http.MethodPost, "/auth/login", "", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, wrongPassword))

	unknownEmail := s.do(http.MethodPost, "/auth/login", "", `{"email":"b@x.com","password":"pw123"}`)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")
	token := s.login(t, "a@x.com", "pw123")

	rec := s.do(http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsActive)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodGet, "/todos/completed"},
		{http.MethodGet, "/todos/pending"},
		{http.MethodGet, "/todos/1"},
		{http.MethodPut, "/todos/1"},
		{http.MethodDelete, "/todos/1"},
		{http.MethodPatch, "/todos/1/toggle"},
		{http.MethodGet, "/stats"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := s.do(r.method, r.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
			assert.JSONEq(t, `{"error":"could not validate credentials","code":"UNAUTHORIZED"}`, rec.Body.String())

			rec = s.do(r.method, r.path, "garbage.token.value", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestInactiveUserIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")
	token := s.login(t, "a@x.com", "pw123")

	require.NoError(t, s.db.Model(&model.User{}).Where("email = ?", "a@x.com").Update("is_active", false).Error)

	rec := s.do(http.MethodGet, "/todos", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec))

	rec = s.do(http.MethodPost, "/auth/login", "", `{"email":"a@x.com","password":"pw123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rec))
}

func TestTodoLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")
	token := s.login(t, "a@x.com", "pw123")

	rec := s.do(http.MethodGet, "/todos", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// trailing slash is accepted
	rec = s.do(http.MethodPost, "/todos/", token, `{"title":"buy milk","description":"2 litres"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var todo model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	assert.Equal(t, "buy milk", todo.Title)
	assert.False(t, todo.Completed)
	assert.NotContains(t, rec.Body.String(), "owner_id")

	path := fmt.Sprintf("/todos/%d", todo.ID)

	rec = s.do(http.MethodPatch, path+"/toggle", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled model.ToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	assert.Equal(t, fmt.Sprintf("Todo %d has been marked completed", todo.ID), toggled.Message)
	assert.True(t, toggled.Todo.Completed)

	rec = s.do(http.MethodGet, "/todos/completed", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var completed []model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	require.Len(t, completed, 1)
	assert.Equal(t, todo.ID, completed[0].ID)

	rec = s.do(http.MethodGet, "/todos/pending", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(http.MethodPut, path, token, `{"completed":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "2 litres", *updated.Description)

	rec = s.do(http.MethodDelete, path, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, todo.ID, deleted.ID)

	rec = s.do(http.MethodGet, path, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TODO_NOT_FOUND", decodeError(t, rec))
}

func TestTodoRequestValidation(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")
	token := s.login(t, "a@x.com", "pw123")
	todo := s.createTodo(t, token, "valid")

	tests := []struct {
		name, method, path, body string
	}{
		{"missing title", http.MethodPost, "/todos", `{"description":"x"}`},
		{"blank title", http.MethodPost, "/todos", `{"title":"   "}`},
		{"long title", http.MethodPost, "/todos", fmt.Sprintf(`{"title":%q}`, strings.Repeat("a", 301))},
		{"unknown field", http.MethodPost, "/todos", `{"title":"x","owner_id":2}`},
		{"blank title on update", http.MethodPut, fmt.Sprintf("/todos/%d", todo.ID), `{"title":""}`},
		{"non-numeric id", http.MethodGet, "/todos/abc", ""},
		{"non-numeric id on toggle", http.MethodPatch, "/todos/abc/toggle", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec))
		})
	}
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@x.com", "pw123")
	s.register(t, "bob@x.com", "pw123")
	alice := s.login(t, "alice@x.com", "pw123")
	bob := s.login(t, "bob@x.com", "pw123")

	todo := s.createTodo(t, alice, "alice's secret")
	path := fmt.Sprintf("/todos/%d", todo.ID)

	for _, r := range []struct{ method, path, body string }{
		{http.MethodGet, path, ""},
		{http.MethodPut, path, `{"title":"hijacked"}`},
		{http.MethodPatch, path + "/toggle", ""},
		{http.MethodDelete, path, ""},
	} {
		rec := s.do(r.method, r.path, bob, r.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, r.method)
		assert.Equal(t, "TODO_NOT_FOUND", decodeError(t, rec))
	}

	rec := s.do(http.MethodGet, "/todos", bob, "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(http.MethodGet, path, alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, "alice's secret", stored.Title)
	assert.False(t, stored.Completed)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")
	token := s.login(t, "a@x.com", "pw123")

	rec := s.do(http.MethodGet, "/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"completed":0,"pending":0,"percentage":"0%"}`, rec.Body.String())

	first := s.createTodo(t, token, "one")
	s.createTodo(t, token, "two")
	s.createTodo(t, token, "three")
	rec = s.do(http.MethodPatch, fmt.Sprintf("/todos/%d/toggle", first.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":3,"completed":1,"pending":2,"percentage":"33.3%"}`, rec.Body.String())
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var w Welcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Equal(t, "Welcome to the Todo App API", w.Message)
	assert.NotEmpty(t, w.Endpoints)

	rec = s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	s.do(http.MethodGet, "/todos", "", "")
	rec = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `auth_failures_total{reason="missing_token"} 1`)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/todos",status="401"} 1`)
}
