package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/reports"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/infrastructure/excel"
	"github.com/tilemart/tilemart-api/internal/infrastructure/pdf"
)

// ReportHandler serves the dashboard, the stock report and sales summaries.
type ReportHandler struct {
	reports *reports.UseCase
	pdf     *pdf.Generator
}

// NewReportHandler builds the handler.
func NewReportHandler(uc *reports.UseCase, gen *pdf.Generator) *ReportHandler {
	return &ReportHandler{reports: uc, pdf: gen}
}

// Dashboard returns the landing-page counters.
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.reports.Dashboard()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

func stockFilterFromQuery(c *fiber.Ctx) repository.ProductFilter {
	return repository.ProductFilter{
		Query:       c.Query("search"),
		Type:        c.Query("type"),
		Size:        c.Query("size"),
		Location:    c.Query("location"),
		InStockOnly: c.QueryBool("inStock"),
	}
}

// Stock returns the stock report. The format query switches between JSON,
// PDF and Excel renditions.
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	summary, err := h.reports.StockReport(stockFilterFromQuery(c))
	if err != nil {
		return fail(c, err)
	}
	switch c.Query("format") {
	case "pdf":
		doc, err := h.pdf.StockReportPDF(summary, time.Now())
		if err != nil {
			return fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-report.pdf"`)
		return c.Send(doc)
	case "excel":
		book, err := excel.StockReport(summary)
		if err != nil {
			return fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-report.xlsx"`)
		return c.Send(book)
	default:
		return ok(c, fiber.StatusOK, fiber.Map{"report": summary})
	}
}

// Sales summarizes invoices over a date range. Defaults to the last 30 days.
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if t, err := time.Parse("2006-01-02", c.Query("startDate")); err == nil {
		start = t
	}
	if t, err := time.Parse("2006-01-02", c.Query("endDate")); err == nil {
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	summary, err := h.reports.Sales(start, end)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"summary": summary})
}
