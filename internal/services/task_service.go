package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hirokisan/task-tracker-api/internal/models"
	"github.com/hirokisan/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrStorageFailure  = errors.New("storage failure")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    time.Time
}

// UpdateTaskInput represents a partial update. Nil fields are absent and left
// untouched; status and priority arrive as raw strings and are validated
// before any field is applied.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Deadline    *time.Time
}

// CreateTask validates the input and persists a new task owned by userID.
// The id and created_at are server-assigned; caller-supplied values for them
// never reach this layer.
func (s *TaskService) CreateTask(input CreateTaskInput, userID string) (*models.Task, error) {
	status := models.TaskStatusTodo
	if input.Status != "" {
		parsed, err := models.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	priority, err := models.ParseTaskPriority(input.Priority)
	if err != nil {
		return nil, ErrInvalidPriority
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		Deadline:    input.Deadline,
		CreatedAt:   time.Now().UTC(),
		UserID:      userID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return task, nil
}

// GetTask returns a task by id across all owners.
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks owned by a user in insertion order. A user with
// no tasks gets an empty list, not an error.
func (s *TaskService) ListTasks(userID string) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByStatus returns the user's tasks matching a status string. An
// unrecognized status yields no matches rather than an error.
func (s *TaskService) ListTasksByStatus(userID, status string) ([]models.Task, error) {
	parsed, err := models.ParseTaskStatus(status)
	if err != nil {
		return []models.Task{}, nil
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{UserID: &userID, Status: &parsed})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a partial update to a task. Enum fields are validated
// before anything is mutated, so an invalid value abandons the whole update
// and leaves the stored task untouched.
func (s *TaskService) UpdateTask(taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	var status models.TaskStatus
	if input.Status != nil {
		status, err = models.ParseTaskStatus(*input.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
	}

	var priority models.TaskPriority
	if input.Priority != nil {
		priority, err = models.ParseTaskPriority(*input.Priority)
		if err != nil {
			return nil, ErrInvalidPriority
		}
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = status
	}
	if input.Priority != nil {
		task.Priority = priority
	}
	if input.Deadline != nil {
		task.Deadline = *input.Deadline
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return task, nil
}

// DeleteTask removes a task by id. Deleting an id that does not exist is a
// no-op success.
func (s *TaskService) DeleteTask(taskID string) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}
