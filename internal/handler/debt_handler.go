package handler

import (
	"time"

	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DebtHandler struct {
	service service.DebtService
}

func NewDebtHandler(s service.DebtService) *DebtHandler {
	return &DebtHandler{service: s}
}

// GET /api/v1/debts?status=&customer=&overdue=
func (h *DebtHandler) List(c *fiber.Ctx) error {
	overdue, err := queryBool(c, "overdue")
	if err != nil {
		return err
	}
	result, err := h.service.List(repository.DebtQuery{
		Page:     queryPage(c),
		Status:   model.DebtStatus(c.Query("status")),
		Customer: c.Query("customer"),
		Overdue:  overdue != nil && *overdue,
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GET /api/v1/debts/:id
func (h *DebtHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	debt, err := h.service.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(debt)
}

// GET /api/v1/debts/customer/:name
func (h *DebtHandler) ByCustomer(c *fiber.Ctx) error {
	result, err := h.service.ByCustomer(c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GET /api/v1/debts/summary
func (h *DebtHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary()
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// POST /api/v1/debts/:id/payments
func (h *DebtHandler) Pay(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.PaymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.Pay(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Payment recorded", "data": result})
}
