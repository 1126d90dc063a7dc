package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/dto"
	"github.com/tilemart/tilemart-api/internal/application/returns"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// ReturnHandler serves returns and store-credit consumption.
type ReturnHandler struct {
	returns *returns.UseCase
}

// NewReturnHandler builds the handler.
func NewReturnHandler(uc *returns.UseCase) *ReturnHandler {
	return &ReturnHandler{returns: uc}
}

// Create books a return against an invoice.
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	items := make([]returns.ItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, returns.ItemInput{
			ProductID:    item.ProductID,
			Quantity:     units.Quantity{Boxes: item.Quantity.Boxes, Pieces: item.Quantity.Pieces},
			ReturnValue:  item.ReturnValue,
			ReturnReason: item.ReturnReason,
			Condition:    item.Condition,
		})
	}
	ret, err := h.returns.Create(returns.CreateInput{
		InvoiceID:    in.InvoiceID,
		ReturnType:   in.ReturnType,
		Items:        items,
		RefundMethod: in.RefundMethod,
		Notes:        in.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, fiber.Map{"return": ret})
}

// List returns returns matching the filter.
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	filter := repository.ReturnFilter{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		CustomerID: c.Query("customerId"),
	}
	if t, err := time.Parse("2006-01-02", c.Query("startDate")); err == nil {
		filter.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("endDate")); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}
	list, err := h.returns.List(filter)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"returns": list, "total": len(list)})
}

// Get returns one return.
func (h *ReturnHandler) Get(c *fiber.Ctx) error {
	ret, err := h.returns.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"return": ret})
}

// UseCredit consumes store credit oldest-first.
func (h *ReturnHandler) UseCredit(c *fiber.Ctx) error {
	var in dto.UseCreditRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	applications, err := h.returns.UseCredit(in.CustomerID, in.Amount)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"applications": applications})
}
