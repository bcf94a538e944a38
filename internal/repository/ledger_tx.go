package repository

import (
	"context"
	"errors"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerTx is the unit of work a single stock movement executes in. All
// writes either commit together or roll back together.
type LedgerTx interface {
	// LockStock loads the stock row for the pair and holds a row lock until
	// the transaction ends. Returns gorm.ErrRecordNotFound when no row exists.
	LockStock(productID, locationID uuid.UUID) (*model.Stock, error)
	// CreateStock inserts a fresh row. A concurrent creation of the same pair
	// loses on the composite unique index and surfaces as a retryable error.
	CreateStock(stock *model.Stock) error
	SaveStockQuantity(stockID uuid.UUID, quantity int, updatedBy string) error
	AppendTransaction(tx *model.Transaction) error
}

// LedgerTxRunner opens the atomic unit for the movement engine.
type LedgerTxRunner interface {
	RunMovement(ctx context.Context, fn func(ltx LedgerTx) error) error
}

type gormLedgerTxRunner struct {
	db *gorm.DB
}

func NewLedgerTxRunner(db *gorm.DB) LedgerTxRunner {
	return &gormLedgerTxRunner{db: db}
}

func (r *gormLedgerTxRunner) RunMovement(ctx context.Context, fn func(ltx LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerTx{tx: tx})
	})
}

type gormLedgerTx struct {
	tx *gorm.DB
}

func (l *gormLedgerTx) LockStock(productID, locationID uuid.UUID) (*model.Stock, error) {
	var stock model.Stock
	err := l.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (l *gormLedgerTx) CreateStock(stock *model.Stock) error {
	return l.tx.Create(stock).Error
}

func (l *gormLedgerTx) SaveStockQuantity(stockID uuid.UUID, quantity int, updatedBy string) error {
	return l.tx.Model(&model.Stock{}).
		Where("id = ?", stockID).
		Updates(map[string]interface{}{
			"current_quantity": quantity,
			"updated_by":       updatedBy,
		}).Error
}

func (l *gormLedgerTx) AppendTransaction(tx *model.Transaction) error {
	return l.tx.Create(tx).Error
}

// Postgres SQLSTATE codes that mean "the atomic unit lost a race, try again".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// IsRetryableTxError reports whether the failed atomic unit may be retried
// with the same inputs: a duplicate-key loss on lazy stock creation, a
// deadlock, a serialization failure, or an expired lock wait.
func IsRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
	}
	return false
}
