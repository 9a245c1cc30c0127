package handler

import (
	"fmt"
	"time"

	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service service.ReportService
	loc     *time.Location
}

func NewReportHandler(s service.ReportService, loc *time.Location) *ReportHandler {
	return &ReportHandler{service: s, loc: loc}
}

// GET /api/v1/reports/stock.xlsx
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	buf, err := h.service.StockWorkbook()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("stok-%s.xlsx", time.Now().In(h.loc).Format("20060102"))
	return sendWorkbook(c, name, buf.Bytes())
}

// GET /api/v1/reports/sales.xlsx?date_from=&date_to=
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	from, to, err := dateRange(c, h.loc, 30)
	if err != nil {
		return err
	}
	buf, err := h.service.SalesWorkbook(from, to)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("penjualan-%s-%s.xlsx", from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))
	return sendWorkbook(c, name, buf.Bytes())
}

func sendWorkbook(c *fiber.Ctx, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}
