package service

import (
	"errors"
	"fmt"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService is the thin CRUD surface for products, suppliers and
// locations. The movement engine only ever reads these.
type CatalogService interface {
	CreateProduct(req *model.Product, actorID string) error
	UpdateProduct(id uuid.UUID, req *model.Product, actorID string) (*model.Product, error)
	GetAllProducts() ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)

	CreateSupplier(req *model.Supplier, actorID string) error
	UpdateSupplier(id uuid.UUID, req *model.Supplier, actorID string) (*model.Supplier, error)
	GetAllSuppliers() ([]model.Supplier, error)

	CreateLocation(req *model.Location, actorID string) error
	GetAllLocations() ([]model.Location, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	locationRepo repository.LocationRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	locationRepo repository.LocationRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		locationRepo: locationRepo,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, actorID string) error {
	if err := validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrDuplicateSKU
	}

	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return s.productRepo.Create(req)
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product, actorID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Unit = req.Unit
	existing.SupplierID = req.SupplierID
	existing.UpdatedBy = actorID

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) CreateSupplier(req *model.Supplier, actorID string) error {
	if err := validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return s.supplierRepo.Create(req)
}

func (s *catalogService) UpdateSupplier(id uuid.UUID, req *model.Supplier, actorID string) (*model.Supplier, error) {
	existing, err := s.supplierRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Address = req.Address
	existing.UpdatedBy = actorID

	if err := s.supplierRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) GetAllSuppliers() ([]model.Supplier, error) {
	return s.supplierRepo.FindAll()
}

func (s *catalogService) CreateLocation(req *model.Location, actorID string) error {
	if err := validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, _ := s.locationRepo.FindByName(req.Name)
	if existing != nil && existing.ID != uuid.Nil {
		return fmt.Errorf("%w: location name already exists", ErrInvalidInput)
	}

	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return s.locationRepo.Create(req)
}

func (s *catalogService) GetAllLocations() ([]model.Location, error) {
	return s.locationRepo.FindAll()
}
