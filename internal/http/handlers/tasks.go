package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todo_backend/internal/apperr"
	"todo_backend/internal/domain"
	"todo_backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// taskRequest binds task input. Owner and timestamps are server-assigned;
// anything the caller sends for them is ignored.
type taskRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	DueDate     domain.OptionalDate `json:"due_date"`
	IsCompleted *bool               `json:"is_completed"`
}

// taskBindError maps a malformed due_date onto the field error the other
// schema violations produce.
func taskBindError(err error) error {
	if errors.Is(err, domain.ErrInvalidDate) {
		return apperr.FieldError("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return err
}

// ListTasks returns every task owned by the authenticated user.
// GET /api/tasks/
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		abort(c, apperr.Authentication("Authentication credentials were not provided."))
		return
	}

	tasks, err := h.Tasks.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		abort(c, apperr.Internal("Unable to fetch tasks", err))
		return
	}

	response.JSON(c, http.StatusOK, "Tasks fetched successfully", tasks)
}

// CreateTask creates a task owned by the authenticated user. Only title is
// required.
// POST /api/tasks/
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		abort(c, apperr.Authentication("Authentication credentials were not provided."))
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, taskBindError(err))
		return
	}
	if req.Title == nil || *req.Title == "" {
		abort(c, apperr.FieldError("title", "This field is required."))
		return
	}

	task := &domain.Task{
		Title:     *req.Title,
		CreatedBy: userID,
		DueDate:   req.DueDate.Date,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}

	if err := h.Tasks.Create(c.Request.Context(), task); err != nil {
		abort(c, apperr.Internal("Unable to create task", err))
		return
	}

	response.JSON(c, http.StatusCreated, "Task created successfully", task)
}

// RetrieveTask fetches one task by id, scoped to the owner. A task owned by
// another user answers exactly like a missing one.
// GET /api/tasks/:id/
func (h *Handler) RetrieveTask(c *gin.Context) {
	userID, taskID, ok := taskScope(c)
	if !ok {
		return
	}

	task, err := h.Tasks.GetByOwnerAndID(c.Request.Context(), userID, taskID)
	if err != nil {
		abort(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Task fetched successfully", task)
}

// UpdateTask applies a partial update: only fields present in the body
// change, and an explicit "due_date": null clears the due date. Ownership
// and id are immutable.
// PUT /api/tasks/:id/
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskScope(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, taskBindError(err))
		return
	}
	if req.Title != nil && *req.Title == "" {
		abort(c, apperr.FieldError("title", "This field may not be blank."))
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), userID, taskID, domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Date,
		DueDateSet:  req.DueDate.Set,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		abort(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Task updated successfully", task)
}

// DeleteTask removes the task permanently. Deletion is terminal.
// DELETE /api/tasks/:id/
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskScope(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		abort(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Task deleted successfully", nil)
}

// taskScope pulls the authenticated owner and the :id route parameter. A
// non-numeric id behaves like a missing task.
func taskScope(c *gin.Context) (userID, taskID int64, ok bool) {
	userID, ok = getUserID(c)
	if !ok {
		abort(c, apperr.Authentication("Authentication credentials were not provided."))
		return 0, 0, false
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, apperr.NotFound("Task not found"))
		return 0, 0, false
	}
	return userID, taskID, true
}
