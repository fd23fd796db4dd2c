package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"todo_backend/internal/apperr"
	"todo_backend/internal/domain"
	"todo_backend/internal/http/middleware"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUserStore mimics the postgres user repository, including the
// unique-constraint surfacing as field validation errors.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[string]*domain.User)}
}

func (s *fakeUserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return apperr.FieldError("username", "A user with that username already exists.")
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperr.FieldError("email", "A user with that email already exists.")
		}
	}
	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

// fakeTaskStore mimics the owner-scoped task repository: lookups filter on
// id AND owner, so foreign tasks behave exactly like missing ones.
type fakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, tasks: make(map[int64]*domain.Task)}
}

func (s *fakeTaskStore) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.CreatedBy == ownerID {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *fakeTaskStore) Create(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *fakeTaskStore) GetByOwnerAndID(_ context.Context, ownerID, taskID int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.CreatedBy != ownerID {
		return nil, apperr.NotFound("Task not found")
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTaskStore) Update(_ context.Context, ownerID, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.CreatedBy != ownerID {
		return nil, apperr.NotFound("Task not found")
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDateSet {
		t.DueDate = patch.DueDate
	}
	if patch.IsCompleted != nil {
		t.IsCompleted = *patch.IsCompleted
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s *fakeTaskStore) Delete(_ context.Context, ownerID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.CreatedBy != ownerID {
		return apperr.NotFound("Task not found")
	}
	delete(s.tasks, taskID)
	return nil
}

// failingDenylist simulates a denylist store outage.
type failingDenylist struct{}

var errDenylistDown = errors.New("denylist store unavailable")

func (failingDenylist) Add(context.Context, string, time.Duration) error { return errDenylistDown }
func (failingDenylist) Contains(context.Context, string) (bool, error) {
	return false, errDenylistDown
}

type testEnv struct {
	router *gin.Engine
	users  *fakeUserStore
	tasks  *fakeTaskStore
	tokens *service.TokenService
}

// newTestEnv builds a router with the same middleware chain and route table
// as production, backed by in-memory stores.
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithDenylist(t, service.NewMemoryDenylist())
}

func newTestEnvWithDenylist(t *testing.T, denylist service.Denylist) *testEnv {
	t.Helper()

	users := newFakeUserStore()
	tasks := newFakeTaskStore()
	tokens := service.NewTokenService("test-secret", 30*time.Minute, 24*time.Hour, denylist, slog.Default())
	h := NewHandlerWithStores(users, tasks, tokens)

	r := gin.New()
	r.NoRoute(middleware.NotFoundJSON())

	api := r.Group("/api")
	api.Use(middleware.ErrorHandler())

	authJWT := middleware.JWT(tokens)
	api.POST("/token/", h.Token)
	api.POST("/refresh/", h.Refresh)
	api.POST("/register/", h.Register)
	api.POST("/logout/", authJWT, h.Logout)

	tg := api.Group("/tasks", authJWT)
	tg.GET("/", h.ListTasks)
	tg.POST("/", h.CreateTask)
	tg.GET("/:id/", h.RetrieveTask)
	tg.PUT("/:id/", h.UpdateTask)
	tg.DELETE("/:id/", h.DeleteTask)

	return &testEnv{router: r, users: users, tasks: tasks, tokens: tokens}
}

// envelope mirrors the wire shape with the payload kept raw for per-test
// decoding.
type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: response is not an envelope: %v (body %q)", method, path, err, w.Body.String())
	}
	return w, env
}

// checkEnvelope asserts the hard envelope contract: status mirrored in the
// body, success flag consistent, data present.
func checkEnvelope(t *testing.T, w *httptest.ResponseRecorder, env envelope) {
	t.Helper()
	if env.StatusCode != w.Code {
		t.Errorf("envelope status_code %d != HTTP status %d", env.StatusCode, w.Code)
	}
	if env.Success != (w.Code < 400) {
		t.Errorf("envelope success %v inconsistent with status %d", env.Success, w.Code)
	}
	if env.Data == nil {
		t.Error("envelope data missing")
	}
}

// register creates a user through the API and returns the issued token pair.
func (e *testEnv) register(t *testing.T, username, email string) service.TokenPair {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/register/", "", gin.H{
		"username":  username,
		"email":     email,
		"password":  "longpass1",
		"password2": "longpass1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	var data struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	return data.Tokens
}
