package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Items, the customer snapshot, the payment history and the return state are
// JSONB documents; the money columns and payment status live in columns so
// listings can filter and sort without unpacking JSON.
const invoiceColumns = `
	id, invoice_number, invoice_type, invoice_date, sales_channel,
	customer_id, customer_details, items,
	subtotal, discount, cgst, sgst, igst, total_tax,
	invoice_value, total_before_discount, total_amount, round_off_amount, final_amount,
	payment_status, total_paid, pending_amount, next_due_date, payment_history,
	return_state, status, notes, created_at, updated_at`

// InvoiceRepo implements the InvoiceRepository port over PostgreSQL.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the invoice persistence adapter.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var details, items, paymentHistory, returnState []byte
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.InvoiceType, &inv.InvoiceDate, &inv.SalesChannel,
		&inv.CustomerID, &details, &items,
		&inv.Subtotal, &inv.Discount, &inv.CGST, &inv.SGST, &inv.IGST, &inv.TotalTax,
		&inv.InvoiceValue, &inv.TotalBeforeDiscount, &inv.TotalAmount, &inv.RoundOffAmount, &inv.FinalAmount,
		&inv.Payment.Status, &inv.Payment.TotalPaid, &inv.Payment.PendingAmount,
		&inv.Payment.NextDueDate, &paymentHistory,
		&returnState, &inv.Status, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &inv.CustomerDetails); err != nil {
		return nil, fmt.Errorf("decode customer details: %w", err)
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decode invoice items: %w", err)
	}
	if len(paymentHistory) > 0 {
		if err := json.Unmarshal(paymentHistory, &inv.Payment.History); err != nil {
			return nil, fmt.Errorf("decode payment history: %w", err)
		}
	}
	if len(returnState) > 0 {
		if err := json.Unmarshal(returnState, &inv.Return); err != nil {
			return nil, fmt.Errorf("decode return state: %w", err)
		}
	}
	return &inv, nil
}

func invoiceDocs(invoice *entity.Invoice) (details, items, paymentHistory, returnState []byte, err error) {
	if details, err = json.Marshal(invoice.CustomerDetails); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode customer details: %w", err)
	}
	if items, err = json.Marshal(invoice.Items); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode invoice items: %w", err)
	}
	if paymentHistory, err = json.Marshal(invoice.Payment.History); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode payment history: %w", err)
	}
	if returnState, err = json.Marshal(invoice.Return); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode return state: %w", err)
	}
	return details, items, paymentHistory, returnState, nil
}

// Create persists a new invoice.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	details, items, paymentHistory, returnState, err := invoiceDocs(invoice)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO invoices (
			id, invoice_number, invoice_type, invoice_date, sales_channel,
			customer_id, customer_details, items,
			subtotal, discount, cgst, sgst, igst, total_tax,
			invoice_value, total_before_discount, total_amount, round_off_amount, final_amount,
			payment_status, total_paid, pending_amount, next_due_date, payment_history,
			return_state, status, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, now(), now()
		)`
	_, err = r.q.Exec(context.Background(), query,
		invoice.ID, invoice.InvoiceNumber, invoice.InvoiceType, invoice.InvoiceDate, invoice.SalesChannel,
		invoice.CustomerID, details, items,
		invoice.Subtotal, invoice.Discount, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TotalTax,
		invoice.InvoiceValue, invoice.TotalBeforeDiscount, invoice.TotalAmount, invoice.RoundOffAmount, invoice.FinalAmount,
		invoice.Payment.Status, invoice.Payment.TotalPaid, invoice.Payment.PendingAmount,
		invoice.Payment.NextDueDate, paymentHistory,
		returnState, invoice.Status, invoice.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID returns one invoice, nil when absent.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	invoice, err := scanInvoice(r.q.QueryRow(context.Background(),
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return invoice, nil
}

// GetByNumber returns one invoice by document number, nil when absent.
func (r *InvoiceRepo) GetByNumber(number string) (*entity.Invoice, error) {
	invoice, err := scanInvoice(r.q.QueryRow(context.Background(),
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = $1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	return invoice, nil
}

// List returns invoices matching the filter plus the total count.
func (r *InvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	where := []string{"true"}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Search != "" {
		add("(invoice_number ILIKE $%d OR customer_details->>'name' ILIKE $%[1]d OR customer_details->>'phone' ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	if filter.InvoiceType != "" {
		add("invoice_type = $%d", filter.InvoiceType)
	}
	if len(filter.PaymentStatuses) > 0 {
		add("payment_status = ANY($%d)", filter.PaymentStatuses)
	}
	if filter.SalesChannel != "" {
		add("sales_channel = $%d", filter.SalesChannel)
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.StartDate != nil {
		add("invoice_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("invoice_date <= $%d", *filter.EndDate)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM invoices WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + cond +
		` ORDER BY ` + invoiceSortColumn(filter.SortBy) + ` ` + sortOrder(filter.Order)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, invoice)
	}
	return list, total, rows.Err()
}

// ListByCustomer returns a customer's invoices, newest first.
func (r *InvoiceRepo) ListByCustomer(customerID string) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+invoiceColumns+` FROM invoices WHERE customer_id = $1 ORDER BY invoice_date DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices by customer: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, invoice)
	}
	return list, rows.Err()
}

// ListPendingWithDueDate returns unsettled invoices carrying a due date,
// ordered by that date.
func (r *InvoiceRepo) ListPendingWithDueDate() ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE payment_status IN ($1, $2) AND next_due_date IS NOT NULL
		 ORDER BY next_due_date ASC`,
		entity.PaymentStatusPending, entity.PaymentStatusPartial)
	if err != nil {
		return nil, fmt.Errorf("list pending invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, invoice)
	}
	return list, rows.Err()
}

// ListMissingDerivedValues returns invoices never backfilled with
// totalBeforeDiscount or invoiceValue.
func (r *InvoiceRepo) ListMissingDerivedValues() ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE total_before_discount = 0 OR invoice_value = 0`)
	if err != nil {
		return nil, fmt.Errorf("list invoices missing derived values: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, invoice)
	}
	return list, rows.Err()
}

// Update rewrites the invoice row.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	details, items, paymentHistory, returnState, err := invoiceDocs(invoice)
	if err != nil {
		return err
	}
	query := `
		UPDATE invoices SET
			invoice_type = $2, invoice_date = $3, sales_channel = $4,
			customer_details = $5, items = $6,
			subtotal = $7, discount = $8, cgst = $9, sgst = $10, igst = $11, total_tax = $12,
			invoice_value = $13, total_before_discount = $14, total_amount = $15,
			round_off_amount = $16, final_amount = $17,
			payment_status = $18, total_paid = $19, pending_amount = $20,
			next_due_date = $21, payment_history = $22,
			return_state = $23, status = $24, notes = $25,
			updated_at = now()
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		invoice.ID, invoice.InvoiceType, invoice.InvoiceDate, invoice.SalesChannel,
		details, items,
		invoice.Subtotal, invoice.Discount, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TotalTax,
		invoice.InvoiceValue, invoice.TotalBeforeDiscount, invoice.TotalAmount,
		invoice.RoundOffAmount, invoice.FinalAmount,
		invoice.Payment.Status, invoice.Payment.TotalPaid, invoice.Payment.PendingAmount,
		invoice.Payment.NextDueDate, paymentHistory,
		returnState, invoice.Status, invoice.Notes,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// Delete removes the invoice row.
func (r *InvoiceRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// LastNumberWithPrefix returns the highest invoice number under a prefix, or
// empty when none exists.
func (r *InvoiceRepo) LastNumberWithPrefix(prefix string) (string, error) {
	var number string
	err := r.q.QueryRow(context.Background(),
		`SELECT invoice_number FROM invoices WHERE invoice_number LIKE $1 || '%'
		 ORDER BY invoice_number DESC LIMIT 1`, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return number, nil
}

// SumDiscountByCustomer totals the discounts across a customer's invoices.
func (r *InvoiceRepo) SumDiscountByCustomer(customerID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(sum(discount), 0) FROM invoices WHERE customer_id = $1`, customerID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum discounts: %w", err)
	}
	return sum, nil
}

func invoiceSortColumn(sortBy string) string {
	switch sortBy {
	case "invoiceNumber":
		return "invoice_number"
	case "finalAmount":
		return "final_amount"
	case "pendingAmount":
		return "pending_amount"
	case "invoiceDate", "":
		return "invoice_date"
	default:
		return "invoice_date"
	}
}
