package handler

import (
	"strconv"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// lowStockPreview caps the restock list shown next to the day's figures.
const lowStockPreview = 5

type DashboardHandler struct {
	dashboard service.DashboardService
	stock     service.StockService
}

func NewDashboardHandler(dashboard service.DashboardService, stock service.StockService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, stock: stock}
}

// GetStockMovement returns daily inbound/outbound base-unit totals for the
// chart. ?days=N, 1..366, default 7.
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			return apperror.Validation([]apperror.FieldError{{Field: "days", Tag: "range", Param: "1-366"}})
		}
		days = n
	}

	data, err := h.dashboard.GetStockMovement(days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"days": days, "data": data})
}

// GetDashboardStats is the shop's day at a glance, with the most urgent
// restocks attached.
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.GetDashboardStats()
	if err != nil {
		return err
	}
	low, err := h.stock.LowStock()
	if err != nil {
		return err
	}
	if len(low) > lowStockPreview {
		low = low[:lowStockPreview]
	}
	return c.JSON(fiber.Map{"stats": stats, "restock": low})
}
