package model

// Role represents user roles in the system
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, MANAGER, STAFF
	Name        string `gorm:"type:varchar(100)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full access to catalog and user management",
	},
	{
		Code:        RoleManager,
		Name:        "Warehouse Manager",
		Description: "Receives low-stock alerts and manages thresholds",
	},
	{
		Code:        RoleStaff,
		Name:        "Warehouse Staff",
		Description: "Records stock movements",
	},
}
