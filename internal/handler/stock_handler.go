package handler

import (
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

func (h *StockHandler) GetStocks(c *fiber.Ctx) error {
	stocks, err := h.service.GetStocks()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stocks)
}

func (h *StockHandler) GetBreakdown(c *fiber.Ctx) error {
	breakdown, err := h.service.GetBreakdown()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(breakdown)
}

type updateMinLevelRequest struct {
	MinLevel int `json:"min_level"`
}

func (h *StockHandler) UpdateMinLevel(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid stock ID"})
	}

	var req updateMinLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	stock, err := h.service.UpdateMinLevel(id, req.MinLevel, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Threshold updated", "data": stock})
}
