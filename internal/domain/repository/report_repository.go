package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRepository serves the aggregate queries behind the dashboard.
type ReportRepository interface {
	CountInvoicesSince(since time.Time) (int, error)
	SumSalesSince(since time.Time) (decimal.Decimal, error)
	CountInvoicesByPaymentStatus(statuses []string) (int, error)
	SumPendingAmount(statuses []string) (decimal.Decimal, error)
	CountCustomers() (int, error)
}
