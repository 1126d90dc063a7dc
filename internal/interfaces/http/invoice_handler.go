package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/billing"
	"github.com/tilemart/tilemart-api/internal/application/dto"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/internal/infrastructure/excel"
	"github.com/tilemart/tilemart-api/internal/infrastructure/pdf"
)

// InvoiceHandler serves invoicing, settlement and the document renditions.
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
	pdf      *pdf.Generator
}

// NewInvoiceHandler builds the handler.
func NewInvoiceHandler(invoices *billing.InvoiceUseCase, gen *pdf.Generator) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, pdf: gen}
}

func invoiceItems(in []dto.InvoiceItemRequest) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(in))
	for _, item := range in {
		items = append(items, entity.InvoiceItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductType:  item.ProductType,
			ProductSize:  item.ProductSize,
			HSNNo:        item.HSNNo,
			IsCustom:     item.IsCustom,
			Quantity:     units.Quantity{Boxes: item.Quantity.Boxes, Pieces: item.Quantity.Pieces},
			PiecesPerBox: item.PiecesPerBox,
			PricePerBox:  item.PricePerBox,
			ItemTotal:    item.ItemTotal,
			TaxRate:      item.TaxRate,
			TaxAmount:    item.TaxAmount,
		})
	}
	return items
}

// Create books an invoice and moves stock through the ledger.
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	input := billing.CreateInvoiceInput{
		InvoiceType:         in.InvoiceType,
		CustomInvoiceNumber: in.CustomInvoiceNumber,
		SalesChannel:        in.SalesChannel,
		CustomerID:          in.CustomerID,
		Items:               invoiceItems(in.Items),
		Discount:            in.Discount,
		CGST:                in.CGST,
		SGST:                in.SGST,
		IGST:                in.IGST,
		PaidAmount:          in.PaidAmount,
		PaymentMethod:       in.PaymentMethod,
		TransactionID:       in.TransactionID,
		NextDueDate:         in.NextDueDate,
		Notes:               in.Notes,
	}
	if in.InvoiceDate != nil {
		input.InvoiceDate = *in.InvoiceDate
	}
	invoice, err := h.invoices.Create(input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, fiber.Map{"invoice": invoice})
}

func invoiceFilterFromQuery(c *fiber.Ctx) repository.InvoiceFilter {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	filter := repository.InvoiceFilter{
		Search:       c.Query("search"),
		InvoiceType:  c.Query("invoiceType"),
		SalesChannel: c.Query("salesChannel"),
		CustomerID:   c.Query("customerId"),
		SortBy:       c.Query("sortBy"),
		Order:        c.Query("order"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if statuses := c.Query("paymentStatus"); statuses != "" {
		filter.PaymentStatuses = strings.Split(statuses, ",")
	}
	if t, err := time.Parse("2006-01-02", c.Query("startDate")); err == nil {
		filter.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("endDate")); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}
	return filter
}

// List returns invoices matching the filter.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	invoices, total, err := h.invoices.List(invoiceFilterFromQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"invoices": invoices, "total": total})
}

// Get returns one invoice.
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	invoice, err := h.invoices.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"invoice": invoice})
}

// GetByNumber looks an invoice up by its human-facing number.
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	invoice, err := h.invoices.GetByNumber(c.Params("number"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"invoice": invoice})
}

// Update replaces the editable parts, reversing and reapplying stock.
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	input := billing.UpdateInvoiceInput{
		InvoiceDate:  in.InvoiceDate,
		SalesChannel: in.SalesChannel,
		Discount:     in.Discount,
		CGST:         in.CGST,
		SGST:         in.SGST,
		IGST:         in.IGST,
		Notes:        in.Notes,
	}
	if len(in.Items) > 0 {
		input.Items = invoiceItems(in.Items)
	}
	invoice, err := h.invoices.Update(c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"invoice": invoice})
}

// Delete removes the invoice, restoring stock and customer aggregates.
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoices.Delete(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Invoice deleted"})
}

// UpdatePayment settles money against the invoice.
func (h *InvoiceHandler) UpdatePayment(c *fiber.Ctx) error {
	var in dto.PaymentUpdateRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	invoice, err := h.invoices.UpdatePayment(c.Params("id"), billing.PaymentUpdateInput{
		Amount:        in.Amount,
		Method:        in.Method,
		TransactionID: in.TransactionID,
		Discount:      in.Discount,
		NextDueDate:   in.NextDueDate,
		Notes:         in.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"invoice": invoice})
}

// DownloadPDF streams the invoice as a PDF document.
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	invoice, err := h.invoices.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	doc, err := h.pdf.InvoicePDF(invoice)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+invoice.InvoiceNumber+`.pdf"`)
	return c.Send(doc)
}

// ExportExcel streams the filtered invoice list as a workbook.
func (h *InvoiceHandler) ExportExcel(c *fiber.Ctx) error {
	filter := invoiceFilterFromQuery(c)
	filter.Limit = 0
	filter.Offset = 0
	invoices, _, err := h.invoices.List(filter)
	if err != nil {
		return fail(c, err)
	}
	book, err := excel.InvoiceList(invoices)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoices.xlsx"`)
	return c.Send(book)
}

// MigrateValues backfills derived money columns on older invoices.
func (h *InvoiceHandler) MigrateValues(c *fiber.Ctx) error {
	updated, err := h.invoices.MigrateInvoiceValues()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"updated": updated})
}

// RecalculateCustomer trues up one customer's aggregates from their invoices.
func (h *InvoiceHandler) RecalculateCustomer(c *fiber.Ctx) error {
	customer, err := h.invoices.RecalculateCustomerAggregates(c.Params("customerId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"customer": customer})
}
