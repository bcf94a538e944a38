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

type UserService interface {
	CreateUser(req *model.User, actorID string) (*model.UserResponse, error)
	UpdateUser(id uuid.UUID, req *model.User, actorID string) (*model.UserResponse, error)
	GetUsers() ([]model.UserResponse, error)
	GetUser(id uuid.UUID) (*model.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo}
}

func (s *userService) CreateUser(req *model.User, actorID string) (*model.UserResponse, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, _ := s.userRepo.FindByEmail(req.Email)
	if existing != nil && existing.ID != uuid.Nil {
		return nil, ErrDuplicateEmail
	}

	if req.RoleID == nil {
		staff, err := s.roleRepo.FindByCode(model.RoleStaff)
		if err != nil {
			return nil, fmt.Errorf("resolve default role: %w", err)
		}
		req.RoleID = &staff.ID
	}

	req.IsActive = true
	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	if err := s.userRepo.Create(req); err != nil {
		return nil, err
	}

	created, err := s.userRepo.FindByID(req.ID)
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(id uuid.UUID, req *model.User, actorID string) (*model.UserResponse, error) {
	existing, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing.FullName = req.FullName
	existing.RoleID = req.RoleID
	existing.IsActive = req.IsActive
	existing.UpdatedBy = actorID

	if err := s.userRepo.Update(existing); err != nil {
		return nil, err
	}
	resp := existing.ToResponse()
	return &resp, nil
}

func (s *userService) GetUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUser(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}
