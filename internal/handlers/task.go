package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirokisan/task-tracker-api/internal/dto"
	apierrors "github.com/hirokisan/task-tracker-api/internal/errors"
	"github.com/hirokisan/task-tracker-api/internal/middleware"
	"github.com/hirokisan/task-tracker-api/internal/models"
	"github.com/hirokisan/task-tracker-api/internal/services"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	authService *services.AuthService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, authService *services.AuthService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		authService: authService,
	}
}

// resolveCaller maps the verified subject username to its user row. A valid
// token whose subject has no user row is a 404, not a 401: the caller is
// authenticated but unknown to the directory.
func (h *TaskHandler) resolveCaller(c *gin.Context) (*models.User, bool) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}

	user, err := h.authService.CurrentUser(username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
		} else {
			apierrors.InternalError(c, "")
		}
		return nil, false
	}
	return user, true
}

// CreateTask creates a new task owned by the caller.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := h.resolveCaller(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	}, user.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns the caller's tasks in insertion order.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := h.resolveCaller(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(user.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ListTasksByStatus returns the caller's tasks matching a status string.
// Unrecognized status values yield an empty list.
func (h *TaskHandler) ListTasksByStatus(c *gin.Context) {
	user, ok := h.resolveCaller(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByStatus(user.ID, c.Param("status"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns the task loaded by the ownership middleware.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// UpdateTask applies a partial update to a task the caller owns.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(task.ID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask removes a task by id. The ownership check happens here rather
// than in middleware so that deleting an id that no longer exists stays a
// no-op success.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := h.resolveCaller(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		respondTaskError(c, err)
		return
	}

	if task.UserID != user.ID {
		// Same 404 as a missing task; existence is not leaked.
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.taskService.DeleteTask(task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority):
		apierrors.UnprocessableEntity(c, err.Error())
	case errors.Is(err, services.ErrStorageFailure):
		// The cause stays in the log; clients get a generic message.
		log.Printf("task storage failure: %v", err)
		apierrors.InternalError(c, "")
	default:
		log.Printf("unexpected task error: %v", err)
		apierrors.InternalError(c, "")
	}
}
