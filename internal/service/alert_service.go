package service

import (
	"fmt"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/ws"

	"github.com/rs/zerolog"
)

// AlertService fans low-stock alerts out to every current manager. Dispatch
// runs after the movement's atomic unit has committed and is best effort:
// failures are logged and swallowed, never returned to the movement caller.
type AlertService interface {
	NotifyLowStock(product *model.Product, location *model.Location, quantity, minLevel int)
}

type alertService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	wsHub            *ws.Hub
	log              zerolog.Logger
}

func NewAlertService(
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	hub *ws.Hub,
	log zerolog.Logger,
) AlertService {
	return &alertService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		wsHub:            hub,
		log:              log.With().Str("component", "alerts").Logger(),
	}
}

func (s *alertService) NotifyLowStock(product *model.Product, location *model.Location, quantity, minLevel int) {
	managers, err := s.userRepo.FindActiveByRole(model.RoleManager)
	if err != nil {
		s.log.Error().Err(err).
			Str("sku", product.SKU).
			Str("location", location.Name).
			Msg("low-stock alert: failed to list managers")
		return
	}
	if len(managers) == 0 {
		s.log.Debug().Str("sku", product.SKU).Msg("low-stock alert: no managers to notify")
		return
	}

	message := fmt.Sprintf("Low stock: %s (%s) at %s is down to %d (minimum %d)",
		product.Name, product.SKU, location.Name, quantity, minLevel)
	link := "/products/" + product.ID.String()

	notifications := make([]model.Notification, 0, len(managers))
	for _, manager := range managers {
		n := model.Notification{
			UserID:  manager.ID,
			Type:    model.NotificationLowStock,
			Message: message,
			Link:    link,
		}
		n.CreatedBy = "system"
		n.UpdatedBy = "system"
		notifications = append(notifications, n)
	}

	if err := s.notificationRepo.CreateBatch(notifications); err != nil {
		s.log.Error().Err(err).
			Str("sku", product.SKU).
			Int("managers", len(managers)).
			Msg("low-stock alert: failed to write notifications")
		return
	}

	s.wsHub.BroadcastEvent("low_stock", map[string]interface{}{
		"product_id":       product.ID,
		"sku":              product.SKU,
		"location":         location.Name,
		"current_quantity": quantity,
		"min_level":        minLevel,
		"message":          message,
	})

	s.log.Info().
		Str("sku", product.SKU).
		Str("location", location.Name).
		Int("current_quantity", quantity).
		Int("managers", len(managers)).
		Msg("low-stock alert dispatched")
}
