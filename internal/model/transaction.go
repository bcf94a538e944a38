package model

import "github.com/google/uuid"

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

// Transaction is one immutable entry of the movement ledger. Rows are only
// ever appended; the table is the audit trail.
type Transaction struct {
	BaseModel
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id" validate:"uuid_required"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty" validate:"-"`

	Type     TransactionType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=IN OUT"`
	Quantity int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Note     string          `json:"note"`

	// Acting principal
	UserID *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	User   *User      `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
}
