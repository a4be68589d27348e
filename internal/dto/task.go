package dto

import (
	"time"

	"github.com/hirokisan/task-tracker-api/internal/models"
)

// CreateTaskRequest is the request body for task creation. Server-assigned
// fields (id, created_at, user_id) are not accepted here.
type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"required,max=2048"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// UpdateTaskRequest is the request body for a partial update. Each field is
// an explicit present/absent wrapper: a nil pointer means the field was
// absent or null in the payload and must leave the stored value untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2048"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    time.Time           `json:"deadline"`
	CreatedAt   time.Time           `json:"created_at"`
	UserID      string              `json:"user_id"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		CreatedAt:   task.CreatedAt,
		UserID:      task.UserID,
	}
}

// ToTaskDTOs converts a slice of tasks, keeping container order.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
