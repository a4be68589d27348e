package dto

import (
	"time"

	"github.com/hirokisan/task-tracker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         string    `json:"id"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		GivenName:  user.GivenName,
		FamilyName: user.FamilyName,
		Username:   user.Username,
		Email:      user.Email,
		UpdatedAt:  user.UpdatedAt,
	}
}
