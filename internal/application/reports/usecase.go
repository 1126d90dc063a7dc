package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

// UseCase assembles the dashboard and stock report feeds.
type UseCase struct {
	reports  repository.ReportRepository
	products repository.ProductRepository
	invoices repository.InvoiceRepository
	log      *logger.Logger
}

// New builds the use case.
func New(
	reports repository.ReportRepository,
	products repository.ProductRepository,
	invoices repository.InvoiceRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{reports: reports, products: products, invoices: invoices, log: log}
}

// DashboardStats is the headline numbers block.
type DashboardStats struct {
	TodayInvoices   int
	TodaySales      decimal.Decimal
	MonthInvoices   int
	MonthSales      decimal.Decimal
	PendingInvoices int
	PendingAmount   decimal.Decimal
	TotalCustomers  int
}

// Dashboard computes today/this-month sales and the unsettled backlog.
func (uc *UseCase) Dashboard() (*DashboardStats, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	unsettled := []string{entity.PaymentStatusPending, entity.PaymentStatusPartial, entity.PaymentStatusOverdue}

	stats := &DashboardStats{}
	var err error
	if stats.TodayInvoices, err = uc.reports.CountInvoicesSince(startOfDay); err != nil {
		return nil, fmt.Errorf("count today's invoices: %w", err)
	}
	if stats.TodaySales, err = uc.reports.SumSalesSince(startOfDay); err != nil {
		return nil, fmt.Errorf("sum today's sales: %w", err)
	}
	if stats.MonthInvoices, err = uc.reports.CountInvoicesSince(startOfMonth); err != nil {
		return nil, fmt.Errorf("count month invoices: %w", err)
	}
	if stats.MonthSales, err = uc.reports.SumSalesSince(startOfMonth); err != nil {
		return nil, fmt.Errorf("sum month sales: %w", err)
	}
	if stats.PendingInvoices, err = uc.reports.CountInvoicesByPaymentStatus(unsettled); err != nil {
		return nil, fmt.Errorf("count pending invoices: %w", err)
	}
	if stats.PendingAmount, err = uc.reports.SumPendingAmount(unsettled); err != nil {
		return nil, fmt.Errorf("sum pending amount: %w", err)
	}
	if stats.TotalCustomers, err = uc.reports.CountCustomers(); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	return stats, nil
}

// StockRow is one product's position in the stock report.
type StockRow struct {
	Product          *entity.Product
	Available        units.Available
	Status           string // good, low, critical, out_of_stock
	DamagePercentage float64
	ReturnRate       float64
}

// StockSummary totals one stock report run.
type StockSummary struct {
	Rows       []StockRow
	TotalItems int
	LowStock   int
	OutOfStock int
}

// StockReport computes availability and health for every active product.
// Products whose counters cannot be folded are skipped with a warning rather
// than sinking the whole report.
func (uc *UseCase) StockReport(filter repository.ProductFilter) (*StockSummary, error) {
	products, _, err := uc.products.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	summary := &StockSummary{TotalItems: len(products)}
	for _, product := range products {
		available, err := product.Available()
		if err != nil {
			uc.log.Warn().Err(err).Str("product_id", product.ID).Msg("skipping product in stock report")
			continue
		}
		status := units.AvailabilityStatus(available.TotalPieces, product.PiecesPerBox)
		switch status {
		case "out_of_stock":
			summary.OutOfStock++
		case "low", "critical":
			summary.LowStock++
		}

		stockTotal, err := units.ToTotalPieces(product.Stock.Boxes, product.Stock.Pieces, product.PiecesPerBox)
		if err != nil {
			continue
		}
		damageTotal, _ := units.ToTotalPieces(product.Damage.Boxes, product.Damage.Pieces, product.PiecesPerBox)
		salesTotal, _ := units.ToTotalPieces(product.Sales.Boxes, product.Sales.Pieces, product.PiecesPerBox)
		returnsTotal, _ := units.ToTotalPieces(product.Returns.Boxes, product.Returns.Pieces, product.PiecesPerBox)

		summary.Rows = append(summary.Rows, StockRow{
			Product:          product,
			Available:        available,
			Status:           status,
			DamagePercentage: units.DamagePercentage(damageTotal, stockTotal),
			ReturnRate:       units.ReturnRate(returnsTotal, salesTotal),
		})
	}
	return summary, nil
}

// SalesSummary aggregates invoices over a date range.
type SalesSummary struct {
	InvoiceCount int
	TotalSales   decimal.Decimal
	TotalTax     decimal.Decimal
	TotalPaid    decimal.Decimal
	TotalPending decimal.Decimal
	ByType       map[string]decimal.Decimal
}

// Sales sums the invoices between two dates, split by invoice type.
func (uc *UseCase) Sales(start, end time.Time) (*SalesSummary, error) {
	invoices, _, err := uc.invoices.List(repository.InvoiceFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	summary := &SalesSummary{
		InvoiceCount: len(invoices),
		TotalSales:   decimal.Zero,
		TotalTax:     decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
		ByType:       map[string]decimal.Decimal{},
	}
	for _, invoice := range invoices {
		summary.TotalSales = summary.TotalSales.Add(invoice.FinalAmount)
		summary.TotalTax = summary.TotalTax.Add(invoice.TotalTax)
		summary.TotalPaid = summary.TotalPaid.Add(invoice.Payment.TotalPaid)
		summary.TotalPending = summary.TotalPending.Add(invoice.Payment.PendingAmount)
		current, ok := summary.ByType[invoice.InvoiceType]
		if !ok {
			current = decimal.Zero
		}
		summary.ByType[invoice.InvoiceType] = current.Add(invoice.FinalAmount)
	}
	return summary, nil
}
