package service

import (
	"errors"
	"fmt"
	"sort"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Breakdown status labels.
const (
	StatusOutOfStock = "Out of Stock"
	StatusLowStock   = "Low Stock"
	StatusInStock    = "In Stock"
)

// LocationBreakdown is one (location, quantity, threshold) tuple of a
// product's breakdown.
type LocationBreakdown struct {
	LocationName string `json:"location_name"`
	Quantity     int    `json:"quantity"`
	MinLevel     int    `json:"min_level"`
}

// ProductBreakdown aggregates a product's stock across every location.
type ProductBreakdown struct {
	ProductID     uuid.UUID           `json:"product_id"`
	ProductName   string              `json:"product_name"`
	SKU           string              `json:"sku"`
	TotalQuantity int                 `json:"total_quantity"`
	TotalMinLevel int                 `json:"total_min_level"`
	Status        string              `json:"status"`
	Locations     []LocationBreakdown `json:"locations"`
}

type StockService interface {
	GetStocks() ([]model.Stock, error)
	GetBreakdown() ([]ProductBreakdown, error)
	UpdateMinLevel(id uuid.UUID, minLevel int, updatedBy string) (*model.Stock, error)
}

type stockService struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

func NewStockService(stockRepo repository.StockRepository, productRepo repository.ProductRepository) StockService {
	return &stockService{stockRepo: stockRepo, productRepo: productRepo}
}

func (s *stockService) GetStocks() ([]model.Stock, error) {
	return s.stockRepo.FindAll()
}

// GetBreakdown computes the per-product aggregation fresh on every query. It
// is advisory reporting: it reads committed state and may lag concurrent
// movements.
func (s *stockService) GetBreakdown() ([]ProductBreakdown, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	stocks, err := s.stockRepo.FindAll()
	if err != nil {
		return nil, err
	}
	return BuildBreakdown(products, stocks), nil
}

// BuildBreakdown folds stock rows into per-product totals and classifies each
// product: zero on hand is "Out of Stock", at or below the summed threshold
// is "Low Stock", anything above it is "In Stock". Result is sorted by
// product name.
func BuildBreakdown(products []model.Product, stocks []model.Stock) []ProductBreakdown {
	byProduct := make(map[uuid.UUID][]model.Stock)
	for _, stock := range stocks {
		byProduct[stock.ProductID] = append(byProduct[stock.ProductID], stock)
	}

	breakdowns := make([]ProductBreakdown, 0, len(products))
	for _, product := range products {
		b := ProductBreakdown{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Locations:   []LocationBreakdown{},
		}
		for _, stock := range byProduct[product.ID] {
			locationName := ""
			if stock.Location != nil {
				locationName = stock.Location.Name
			}
			b.Locations = append(b.Locations, LocationBreakdown{
				LocationName: locationName,
				Quantity:     stock.CurrentQuantity,
				MinLevel:     stock.MinLevel,
			})
			b.TotalQuantity += stock.CurrentQuantity
			b.TotalMinLevel += stock.MinLevel
		}
		sort.Slice(b.Locations, func(i, j int) bool {
			return b.Locations[i].LocationName < b.Locations[j].LocationName
		})

		switch {
		case b.TotalQuantity == 0:
			b.Status = StatusOutOfStock
		case b.TotalQuantity <= b.TotalMinLevel:
			b.Status = StatusLowStock
		default:
			b.Status = StatusInStock
		}
		breakdowns = append(breakdowns, b)
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].ProductName < breakdowns[j].ProductName
	})
	return breakdowns
}

func (s *stockService) UpdateMinLevel(id uuid.UUID, minLevel int, updatedBy string) (*model.Stock, error) {
	if minLevel < 0 {
		return nil, fmt.Errorf("%w: min level must not be negative", ErrInvalidInput)
	}
	if err := s.stockRepo.UpdateMinLevel(id, minLevel, updatedBy); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}
	return s.stockRepo.FindByID(id)
}
