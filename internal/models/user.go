package models

import "time"

// User mirrors the identity provider's subject. The ID is the provider's
// stable subject identifier, not a locally generated key.
type User struct {
	ID         string    `gorm:"type:varchar(50);primarykey" json:"id"`
	GivenName  string    `gorm:"type:varchar(200);not null" json:"given_name"`
	FamilyName string    `gorm:"type:varchar(200);not null" json:"family_name"`
	Username   string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"email"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:UserID" json:"-"`
}
