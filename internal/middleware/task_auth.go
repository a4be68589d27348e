package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/hirokisan/task-tracker-api/internal/constants"
	"github.com/hirokisan/task-tracker-api/internal/database"
	apierrors "github.com/hirokisan/task-tracker-api/internal/errors"
	"github.com/hirokisan/task-tracker-api/internal/models"
)

// RequireTaskOwnership checks that the task in the URL belongs to the caller.
// A foreign owner gets the same 404 as a missing task so that existence is
// never leaked. The loaded task is stored in context for the handler.
func RequireTaskOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, exists := GetUsername(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().
			Where("username = ?", username).
			First(&user).Error; err != nil {
			apierrors.NotFound(c, "User not found")
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Where("id = ?", c.Param("id")).
			First(&task).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		if task.UserID != user.ID {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskOwnership from context
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
