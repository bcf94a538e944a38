package service

import (
	"errors"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService is the per-user inbox: list your notifications, mark
// one read. Entries are never deleted here.
type NotificationService interface {
	GetForUser(userID uuid.UUID) ([]model.Notification, error)
	MarkRead(id, userID uuid.UUID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) GetForUser(userID uuid.UUID) ([]model.Notification, error) {
	return s.notificationRepo.FindByUser(userID)
}

func (s *notificationService) MarkRead(id, userID uuid.UUID) error {
	err := s.notificationRepo.MarkRead(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
