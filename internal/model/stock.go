package model

import "github.com/google/uuid"

// DefaultMinLevel is the alert threshold a stock row starts with when it is
// created lazily by the first inbound movement.
const DefaultMinLevel = 5

// Stock is the current-quantity record for one product at one location.
// The (product_id, location_id) pair is unique: at most one row per pair.
// Mutated exclusively inside the movement engine's atomic unit.
type Stock struct {
	BaseModel
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_location" json:"product_id"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_location" json:"location_id"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty" validate:"-"`

	CurrentQuantity int `gorm:"not null;default:0;check:current_quantity >= 0" json:"current_quantity"`
	MinLevel        int `gorm:"not null;default:5;check:min_level >= 0" json:"min_level"`
}

// IsLow reports whether the row sits at or below its alert threshold.
func (s *Stock) IsLow() bool {
	return s.CurrentQuantity <= s.MinLevel
}
