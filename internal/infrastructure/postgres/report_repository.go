package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo serves the dashboard aggregates straight from SQL.
type ReportRepo struct {
	q Querier
}

// NewReportRepository builds the report query adapter.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// CountInvoicesSince counts invoices dated at or after a point in time.
func (r *ReportRepo) CountInvoicesSince(since time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM invoices WHERE invoice_date >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices since: %w", err)
	}
	return count, nil
}

// SumSalesSince totals final amounts for invoices dated at or after a point
// in time.
func (r *ReportRepo) SumSalesSince(since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(sum(final_amount), 0) FROM invoices WHERE invoice_date >= $1`, since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum sales since: %w", err)
	}
	return sum, nil
}

// CountInvoicesByPaymentStatus counts invoices in any of the given payment
// statuses.
func (r *ReportRepo) CountInvoicesByPaymentStatus(statuses []string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM invoices WHERE payment_status = ANY($1)`, statuses).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices by payment status: %w", err)
	}
	return count, nil
}

// SumPendingAmount totals outstanding balances across invoices in the given
// payment statuses.
func (r *ReportRepo) SumPendingAmount(statuses []string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(sum(pending_amount), 0) FROM invoices WHERE payment_status = ANY($1)`, statuses).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum pending amount: %w", err)
	}
	return sum, nil
}

// CountCustomers counts active customers.
func (r *ReportRepo) CountCustomers() (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM customers WHERE is_active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}
