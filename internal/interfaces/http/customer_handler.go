package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/billing"
	"github.com/tilemart/tilemart-api/internal/application/dto"
	"github.com/tilemart/tilemart-api/internal/application/payments"
	"github.com/tilemart/tilemart-api/internal/application/returns"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

// CustomerHandler serves the customer book plus the per-customer views over
// invoices, payments and store credit.
type CustomerHandler struct {
	customers *billing.CustomerUseCase
	payments  *payments.UseCase
	returns   *returns.UseCase
}

// NewCustomerHandler builds the handler.
func NewCustomerHandler(customers *billing.CustomerUseCase, pay *payments.UseCase, ret *returns.UseCase) *CustomerHandler {
	return &CustomerHandler{customers: customers, payments: pay, returns: ret}
}

func customerInput(in dto.CustomerRequest) billing.CustomerInput {
	return billing.CustomerInput{
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		GSTNumber: in.GSTNumber,
		Notes:     in.Notes,
	}
}

// Create registers a customer.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	customer, err := h.customers.Create(customerInput(in))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, fiber.Map{"customer": customer})
}

// List returns customers with discount totals and available credit.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	views, err := h.customers.List(repository.CustomerFilter{
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	})
	if err != nil {
		return fail(c, err)
	}
	items := make([]fiber.Map, 0, len(views))
	for _, v := range views {
		items = append(items, fiber.Map{
			"customer":           v.Customer,
			"totalDiscountGiven": v.TotalDiscountGiven,
			"availableCredit":    v.AvailableCredit,
		})
	}
	return ok(c, fiber.StatusOK, fiber.Map{"customers": items, "total": len(items)})
}

// Get returns one customer with derived figures.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	view, err := h.customers.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"customer":           view.Customer,
		"totalDiscountGiven": view.TotalDiscountGiven,
		"availableCredit":    view.AvailableCredit,
	})
}

// Update edits a customer.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	customer, err := h.customers.Update(c.Params("id"), customerInput(in))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"customer": customer})
}

// Delete removes a customer without invoices.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.customers.Delete(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Customer deleted"})
}

// Stats derives purchase summary figures.
func (h *CustomerHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.customers.Stats(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

// Invoices lists the customer's invoices, newest first.
func (h *CustomerHandler) Invoices(c *fiber.Ctx) error {
	invoices, err := h.customers.Invoices(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"invoices": invoices})
}

// PaymentHistory lists the customer's payments with the running total.
func (h *CustomerHandler) PaymentHistory(c *fiber.Ctx) error {
	history, err := h.payments.HistoryByCustomer(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"payments":    history.Payments,
		"totalAmount": history.TotalAmount,
	})
}

// Credit reports the customer's open store credit.
func (h *CustomerHandler) Credit(c *fiber.Ctx) error {
	credit, err := h.returns.CreditByCustomer(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"available": credit.Available,
		"credits":   credit.Credits,
	})
}
