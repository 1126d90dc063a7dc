package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `
	id, invoice_id, invoice_number, customer_id, customer_name,
	amount, method, payment_date, transaction_id, next_due_date,
	remaining_amount, notes, created_at, updated_at`

// PaymentRepo implements the PaymentRepository port over PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository builds the payment persistence adapter.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.InvoiceID, &p.InvoiceNumber, &p.CustomerID, &p.CustomerName,
		&p.Amount, &p.Method, &p.PaymentDate, &p.TransactionID, &p.NextDueDate,
		&p.RemainingAmount, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persists a new payment record.
func (r *PaymentRepo) Create(payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			id, invoice_id, invoice_number, customer_id, customer_name,
			amount, method, payment_date, transaction_id, next_due_date,
			remaining_amount, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.InvoiceID, payment.InvoiceNumber, payment.CustomerID, payment.CustomerName,
		payment.Amount, payment.Method, payment.PaymentDate, payment.TransactionID, payment.NextDueDate,
		payment.RemainingAmount, payment.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID returns one payment, nil when absent.
func (r *PaymentRepo) GetByID(id string) (*entity.Payment, error) {
	payment, err := scanPayment(r.q.QueryRow(context.Background(),
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

// List returns payments matching the filter plus the total count. Rows with
// a non-positive amount never appear.
func (r *PaymentRepo) List(filter repository.PaymentFilter) ([]*entity.Payment, int, error) {
	where := []string{"amount > 0"}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Search != "" {
		add("invoice_number ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.InvoiceID != "" {
		add("invoice_id = $%d", filter.InvoiceID)
	}
	if filter.Method != "" {
		add("method = $%d", filter.Method)
	}
	if filter.StartDate != nil {
		add("payment_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("payment_date <= $%d", *filter.EndDate)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM payments WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + cond +
		` ORDER BY ` + paymentSortColumn(filter.SortBy) + ` ` + sortOrder(filter.Order)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, payment)
	}
	return list, total, rows.Err()
}

// ListByCustomer returns a customer's payments, newest first.
func (r *PaymentRepo) ListByCustomer(customerID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+paymentColumns+` FROM payments
		 WHERE customer_id = $1 AND amount > 0 ORDER BY payment_date DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments by customer: %w", err)
	}
	defer rows.Close()

	var list []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, payment)
	}
	return list, rows.Err()
}

// Delete removes one payment record.
func (r *PaymentRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// DeleteByInvoice removes every payment record tied to an invoice.
func (r *PaymentRepo) DeleteByInvoice(invoiceID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM payments WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete payments for invoice: %w", err)
	}
	return nil
}

func paymentSortColumn(sortBy string) string {
	switch sortBy {
	case "amount":
		return "amount"
	case "createdAt":
		return "created_at"
	default:
		return "payment_date"
	}
}
