package handlers

import (
	"context"
	"reflect"
	"strings"

	"todo_backend/internal/domain"
	"todo_backend/internal/repository"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
)

func init() {
	// Report validation errors under the JSON field names clients sent.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// UserStore is the persistence surface the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TaskStore is the owner-scoped persistence surface for task CRUD.
type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	GetByOwnerAndID(ctx context.Context, ownerID, taskID int64) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
}

type Handler struct {
	Users  UserStore
	Tasks  TaskStore
	Tokens *service.TokenService
}

func NewHandler(db *pgxpool.Pool, tokens *service.TokenService) *Handler {
	return &Handler{
		Users:  repository.NewUserRepository(db),
		Tasks:  repository.NewTaskRepository(db),
		Tokens: tokens,
	}
}

// NewHandlerWithStores wires explicit store implementations; used by tests.
func NewHandlerWithStores(users UserStore, tasks TaskStore, tokens *service.TokenService) *Handler {
	return &Handler{Users: users, Tasks: tasks, Tokens: tokens}
}

// abort records the error for the normalizing middleware and stops the
// handler chain. Handlers never write error bodies themselves.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
