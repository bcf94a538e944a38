package model

type Location struct {
	BaseModel
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Type string `gorm:"type:varchar(50)" json:"type"` // warehouse, shelf, cold storage, ...
}
