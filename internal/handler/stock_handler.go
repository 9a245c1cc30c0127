package handler

import (
	"time"

	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	service service.StockService
	loc     *time.Location
}

func NewStockHandler(s service.StockService, loc *time.Location) *StockHandler {
	return &StockHandler{service: s, loc: loc}
}

// POST /api/v1/stock/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustStockRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.Adjust(&req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": result})
}

// GET /api/v1/stock/low
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.service.LowStock()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": len(items), "data": items})
}

// GET /api/v1/stock/movements
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	productID, err := queryUUID(c, "product_id")
	if err != nil {
		return err
	}
	from, err := queryDate(c, "date_from", h.loc, false)
	if err != nil {
		return err
	}
	to, err := queryDate(c, "date_to", h.loc, true)
	if err != nil {
		return err
	}

	result, err := h.service.Movements(repository.MovementQuery{
		Page:      queryPage(c),
		ProductID: productID,
		Type:      model.MovementType(c.Query("type")),
		From:      from,
		To:        to,
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GET /api/v1/stock/stats
func (h *StockHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
