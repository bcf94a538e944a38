package model

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationLowStock NotificationType = "LOW_STOCK"
)

// Notification is a per-user inbox entry. The only mutation it ever sees is
// the read flag being set.
type Notification struct {
	BaseModel
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User    *User            `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
	Type    NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message string           `gorm:"type:text;not null" json:"message" validate:"required"`
	Link    string           `gorm:"type:varchar(255)" json:"link"`
	IsRead  bool             `gorm:"default:false" json:"is_read"`
}
