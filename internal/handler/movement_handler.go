package handler

import (
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MovementHandler struct {
	service service.MovementService
}

func NewMovementHandler(s service.MovementService) *MovementHandler {
	return &MovementHandler{service: s}
}

func (h *MovementHandler) RecordMovement(c *fiber.Ctx) error {
	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user identity"})
	}
	actor := service.Actor{
		ID:    actorID,
		Name:  getUserName(c),
		Email: getUserEmail(c),
	}

	tx, err := h.service.RecordMovement(c.UserContext(), &req, actor)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": tx})
}

func (h *MovementHandler) GetMovements(c *fiber.Ctx) error {
	var filter repository.TransactionFilter
	if raw := c.Query("product_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product_id filter"})
		}
		filter.ProductID = id
	}
	if raw := c.Query("location_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid location_id filter"})
		}
		filter.LocationID = id
	}
	if raw := c.Query("type"); raw != "" {
		filter.Type = model.TransactionType(raw)
	}

	transactions, err := h.service.GetTransactions(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(transactions)
}

func (h *MovementHandler) GetMovement(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.service.GetTransactionByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tx)
}
