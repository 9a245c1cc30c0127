package handler

import (
	"time"

	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	service service.TransactionService
	loc     *time.Location
}

func NewTransactionHandler(s service.TransactionService, loc *time.Location) *TransactionHandler {
	return &TransactionHandler{service: s, loc: loc}
}

// POST /api/v1/transactions
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	txn, err := h.service.Create(&req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction created", "data": txn})
}

// GET /api/v1/transactions
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	isPaid, err := queryBool(c, "is_paid")
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

	result, err := h.service.List(repository.TransactionQuery{
		Page:          queryPage(c),
		Search:        c.Query("search"),
		PaymentMethod: model.PaymentMethod(c.Query("payment_method")),
		Status:        model.TransactionStatus(c.Query("status")),
		IsPaid:        isPaid,
		From:          from,
		To:            to,
		SortBy:        c.Query("sort_by", "createdAt"),
		SortOrder:     c.Query("sort_order", "desc"),
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	txn, err := h.service.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(txn)
}

// GET /api/v1/transactions/receipt/:number
func (h *TransactionHandler) GetByReceipt(c *fiber.Ctx) error {
	txn, err := h.service.GetByReceipt(c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(txn)
}

// PUT /api/v1/transactions/:id
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	txn, err := h.service.Update(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": txn})
}

// POST /api/v1/transactions/:id/cancel
func (h *TransactionHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.CancelRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	txn, err := h.service.Cancel(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Transaction cancelled", "data": txn})
}

// POST /api/v1/transactions/:id/payments
func (h *TransactionHandler) AddPayment(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.PaymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.AddPayment(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Payment recorded", "data": result})
}

// GET /api/v1/transactions/stats?date_from=&date_to=
// Without a range the last 30 days are reported.
func (h *TransactionHandler) Stats(c *fiber.Ctx) error {
	from, to, err := dateRange(c, h.loc, 30)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"date_from": from.Format(time.RFC3339),
		"date_to":   to.Format(time.RFC3339),
		"data":      stats,
	})
}

// GET /api/v1/transactions/daily?date=YYYY-MM-DD
func (h *TransactionHandler) Daily(c *fiber.Ctx) error {
	date, err := queryDate(c, "date", h.loc, false)
	if err != nil {
		return err
	}
	day := time.Now().In(h.loc)
	if date != nil {
		day = *date
	}
	result, err := h.service.DailySales(day)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// dateRange reads date_from/date_to, defaulting to the last `days` days up to
// the end of today.
func dateRange(c *fiber.Ctx, loc *time.Location, days int) (time.Time, time.Time, error) {
	from, err := queryDate(c, "date_from", loc, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryDate(c, "date_to", loc, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := time.Now().In(loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -days)
	if from != nil {
		start = *from
	}
	return start, end, nil
}
