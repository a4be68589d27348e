package repository

import (
	"github.com/hirokisan/task-tracker-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user row
	Create(user *models.User) error

	// FindByUsername finds a user by username. A missing row is an error
	// (gorm.ErrRecordNotFound), not an empty result: every caller that gets
	// here has already authenticated and is expected to exist.
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// TaskFilter holds filtering options for listing tasks. Nil fields are not
// applied.
type TaskFilter struct {
	UserID *string
	Status *models.TaskStatus
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create persists a new task within a transaction
	Create(task *models.Task) error

	// FindByID finds a task by ID across all owners; ownership checks are the
	// caller's concern
	FindByID(id string) (*models.Task, error)

	// List retrieves tasks matching the filter in insertion order
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves a task within a transaction
	Update(task *models.Task) error

	// Delete removes a task by ID; deleting an absent id is a no-op
	Delete(id string) error
}
