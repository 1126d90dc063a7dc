package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/dto"
	"github.com/tilemart/tilemart-api/internal/application/payments"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

// PaymentHandler serves the payment register and the dues view.
type PaymentHandler struct {
	payments *payments.UseCase
}

// NewPaymentHandler builds the handler.
func NewPaymentHandler(uc *payments.UseCase) *PaymentHandler {
	return &PaymentHandler{payments: uc}
}

// List returns payments matching the filter.
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	filter := repository.PaymentFilter{
		Search:     c.Query("search"),
		CustomerID: c.Query("customerId"),
		InvoiceID:  c.Query("invoiceId"),
		Method:     c.Query("method"),
		SortBy:     c.Query("sortBy"),
		Order:      c.Query("order"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if t, err := time.Parse("2006-01-02", c.Query("startDate")); err == nil {
		filter.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("endDate")); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}
	list, total, err := h.payments.List(filter)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"payments": list, "total": total})
}

// Get returns one payment.
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	payment, err := h.payments.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"payment": payment})
}

// Pending splits unsettled invoices into overdue and upcoming by due date.
func (h *PaymentHandler) Pending(c *fiber.Ctx) error {
	pending, err := h.payments.Pending()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"overdue":  pending.Overdue,
		"upcoming": pending.Upcoming,
	})
}

// Delete reverses a payment and restores the invoice's pending amount.
func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	if err := h.payments.Delete(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Payment deleted"})
}
