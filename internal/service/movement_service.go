package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	// Retry budget for atomic units that lose a race (duplicate-key on lazy
	// stock creation, deadlock, serialization failure).
	maxMovementAttempts = 3
	// Upper bound on waiting for the stock row lock. Expiry aborts the unit
	// with no state change and surfaces as a retryable conflict.
	movementTimeout = 5 * time.Second
)

// MovementRequest is one IN or OUT quantity adjustment against a
// (product, location) pair.
type MovementRequest struct {
	ProductID  uuid.UUID             `json:"product_id" validate:"uuid_required"`
	LocationID uuid.UUID             `json:"location_id" validate:"uuid_required"`
	Type       model.TransactionType `json:"type" validate:"required,oneof=IN OUT"`
	Quantity   int                   `json:"quantity" validate:"required,gt=0"`
	Note       string                `json:"note"`
}

// Actor is the authenticated principal recording the movement.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type MovementService interface {
	RecordMovement(ctx context.Context, req *MovementRequest, actor Actor) (*model.Transaction, error)
	GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(id uuid.UUID) (*model.Transaction, error)
}

type movementService struct {
	runner       repository.LedgerTxRunner
	stockRepo    repository.StockRepository
	txRepo       repository.TransactionRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	alerts       AlertService
	wsHub        *ws.Hub
	log          zerolog.Logger
}

func NewMovementService(
	runner repository.LedgerTxRunner,
	stockRepo repository.StockRepository,
	txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	alerts AlertService,
	hub *ws.Hub,
	log zerolog.Logger,
) MovementService {
	return &movementService{
		runner:       runner,
		stockRepo:    stockRepo,
		txRepo:       txRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		alerts:       alerts,
		wsHub:        hub,
		log:          log.With().Str("component", "movement").Logger(),
	}
}

// RecordMovement validates and applies a single stock movement atomically.
// The stock row and the appended ledger entry commit as one unit; an
// insufficient OUT aborts the unit with no side effects at all.
func (s *movementService) RecordMovement(ctx context.Context, req *MovementRequest, actor Actor) (*model.Transaction, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Fail fast on dangling references before the atomic unit opens.
	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}
	location, err := s.locationRepo.FindByID(req.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("resolve location: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, movementTimeout)
	defer cancel()

	var created *model.Transaction
	var lastErr error
	for attempt := 1; attempt <= maxMovementAttempts; attempt++ {
		created = nil
		err := s.runner.RunMovement(ctx, func(ltx repository.LedgerTx) error {
			tx, err := s.applyMovement(ltx, req, actor)
			if err != nil {
				return err
			}
			created = tx
			return nil
		})
		if err == nil {
			lastErr = nil
			break
		}
		if !repository.IsRetryableTxError(err) {
			return nil, err
		}
		lastErr = err
		s.log.Warn().Err(err).
			Int("attempt", attempt).
			Str("product_id", req.ProductID.String()).
			Str("location_id", req.LocationID.String()).
			Msg("movement lost a race, retrying")
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, lastErr)
	}

	s.afterCommit(product, location, actor)
	return created, nil
}

// applyMovement runs inside the atomic unit: lock or lazily create the stock
// row, compute the new quantity, persist it and append the ledger entry.
func (s *movementService) applyMovement(ltx repository.LedgerTx, req *MovementRequest, actor Actor) (*model.Transaction, error) {
	stock, err := ltx.LockStock(req.ProductID, req.LocationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if req.Type == model.TxOut {
			// An OUT never implicitly creates an empty row.
			return nil, fmt.Errorf("%w: no stock at this location", ErrInsufficientStock)
		}
		stock = &model.Stock{
			ProductID:       req.ProductID,
			LocationID:      req.LocationID,
			CurrentQuantity: 0,
			MinLevel:        model.DefaultMinLevel,
		}
		stock.CreatedBy = actor.ID.String()
		stock.UpdatedBy = actor.ID.String()
		if err := ltx.CreateStock(stock); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	newQuantity := stock.CurrentQuantity
	switch req.Type {
	case model.TxIn:
		newQuantity += req.Quantity
	case model.TxOut:
		if req.Quantity > stock.CurrentQuantity {
			return nil, fmt.Errorf("%w: insufficient stock at this location", ErrInsufficientStock)
		}
		newQuantity -= req.Quantity
	}

	if err := ltx.SaveStockQuantity(stock.ID, newQuantity, actor.ID.String()); err != nil {
		return nil, err
	}

	userID := actor.ID
	entry := &model.Transaction{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Type:       req.Type,
		Quantity:   req.Quantity,
		Note:       req.Note,
		UserID:     &userID,
	}
	entry.CreatedBy = actor.ID.String()
	entry.UpdatedBy = actor.ID.String()
	if err := ltx.AppendTransaction(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// afterCommit re-reads the committed stock row and dispatches the low-stock
// alert plus the realtime broadcast. Everything here is best effort: a
// failure is logged, never propagated to the movement caller.
func (s *movementService) afterCommit(product *model.Product, location *model.Location, actor Actor) {
	stock, err := s.stockRepo.FindByPair(product.ID, location.ID)
	if err != nil {
		s.log.Warn().Err(err).
			Str("sku", product.SKU).
			Str("location", location.Name).
			Msg("post-commit stock re-read failed, skipping low-stock check")
		return
	}

	s.wsHub.BroadcastEvent("stock_update", map[string]interface{}{
		"product": map[string]interface{}{
			"id":   product.ID,
			"sku":  product.SKU,
			"name": product.Name,
		},
		"location": map[string]interface{}{
			"id":   location.ID,
			"name": location.Name,
		},
		"current_quantity": stock.CurrentQuantity,
		"user": map[string]interface{}{
			"id":    actor.ID,
			"name":  actor.Name,
			"email": actor.Email,
		},
	})

	if stock.IsLow() {
		s.alerts.NotifyLowStock(product, location, stock.CurrentQuantity, stock.MinLevel)
	}
}

func (s *movementService) GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error) {
	return s.txRepo.FindAll(filter)
}

func (s *movementService) GetTransactionByID(id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.txRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}
