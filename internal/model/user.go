package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated principal. Credential storage and login
// live outside this service; requests arrive carrying a signed identity.
type User struct {
	BaseModel
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	FullName   string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	RoleID     *uint      `gorm:"index" json:"role_id"`
	Role       *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// UserResponse is used for API responses
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	RoleID   *uint     `json:"role_id,omitempty"`
	Role     *Role     `json:"role,omitempty"`
	IsActive bool      `json:"is_active"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		RoleID:   u.RoleID,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
