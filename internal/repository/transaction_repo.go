package repository

import (
	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows the ledger listing. Zero values mean "any".
type TransactionFilter struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Type       model.TransactionType
}

type TransactionRepository interface {
	// FindAll returns ledger entries newest first.
	FindAll(filter TransactionFilter) ([]model.Transaction, error)
	FindByID(id uuid.UUID) (*model.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.Transaction, error) {
	query := r.db.Preload("Product").Preload("Location").Preload("User")
	if filter.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.LocationID != uuid.Nil {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var transactions []model.Transaction
	// The id tiebreaker keeps entries sharing a timestamp in a fixed order.
	err := query.Order("created_at DESC, id").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Preload("Product").Preload("Location").Preload("User").First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}
