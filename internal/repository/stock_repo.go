package repository

import (
	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockRepository interface {
	FindByID(id uuid.UUID) (*model.Stock, error)
	FindByPair(productID, locationID uuid.UUID) (*model.Stock, error)
	FindAll() ([]model.Stock, error)
	UpdateMinLevel(id uuid.UUID, minLevel int, updatedBy string) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) FindByID(id uuid.UUID) (*model.Stock, error) {
	var stock model.Stock
	err := r.db.Preload("Product").Preload("Location").First(&stock, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepo) FindByPair(productID, locationID uuid.UUID) (*model.Stock, error) {
	var stock model.Stock
	err := r.db.Where("product_id = ? AND location_id = ?", productID, locationID).First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepo) FindAll() ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.Preload("Product").Preload("Location").Find(&stocks).Error
	return stocks, err
}

func (r *stockRepo) UpdateMinLevel(id uuid.UUID, minLevel int, updatedBy string) error {
	result := r.db.Model(&model.Stock{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"min_level":  minLevel,
			"updated_by": updatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
