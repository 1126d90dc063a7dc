package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `
	id, return_number, invoice_id, invoice_number, customer_id, customer_details,
	items, total_return_value, return_type,
	credit_generated, credit_used, credit_balance,
	refund_amount, refund_method, refund_date,
	exchange_invoice_id, exchange_invoice_number, exchange_items, exchange_difference,
	status, notes, stock_adjusted, created_at, updated_at`

// ReturnRepo implements the ReturnRepository port over PostgreSQL.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository builds the return persistence adapter.
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

func scanReturn(row pgx.Row) (*entity.Return, error) {
	var ret entity.Return
	var details, items, exchangeItems []byte
	err := row.Scan(
		&ret.ID, &ret.ReturnNumber, &ret.InvoiceID, &ret.InvoiceNumber, &ret.CustomerID, &details,
		&items, &ret.TotalReturnValue, &ret.ReturnType,
		&ret.CreditGenerated, &ret.CreditUsed, &ret.CreditBalance,
		&ret.RefundAmount, &ret.RefundMethod, &ret.RefundDate,
		&ret.ExchangeInvoiceID, &ret.ExchangeInvoiceNumber, &exchangeItems, &ret.ExchangeDifference,
		&ret.Status, &ret.Notes, &ret.StockAdjusted, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &ret.CustomerDetails); err != nil {
		return nil, fmt.Errorf("decode customer details: %w", err)
	}
	if err := json.Unmarshal(items, &ret.Items); err != nil {
		return nil, fmt.Errorf("decode return items: %w", err)
	}
	if len(exchangeItems) > 0 {
		if err := json.Unmarshal(exchangeItems, &ret.ExchangeItems); err != nil {
			return nil, fmt.Errorf("decode exchange items: %w", err)
		}
	}
	return &ret, nil
}

// Create persists a new return.
func (r *ReturnRepo) Create(ret *entity.Return) error {
	details, err := json.Marshal(ret.CustomerDetails)
	if err != nil {
		return fmt.Errorf("encode customer details: %w", err)
	}
	items, err := json.Marshal(ret.Items)
	if err != nil {
		return fmt.Errorf("encode return items: %w", err)
	}
	exchangeItems, err := json.Marshal(ret.ExchangeItems)
	if err != nil {
		return fmt.Errorf("encode exchange items: %w", err)
	}
	query := `
		INSERT INTO returns (
			id, return_number, invoice_id, invoice_number, customer_id, customer_details,
			items, total_return_value, return_type,
			credit_generated, credit_used, credit_balance,
			refund_amount, refund_method, refund_date,
			exchange_invoice_id, exchange_invoice_number, exchange_items, exchange_difference,
			status, notes, stock_adjusted, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, now(), now()
		)`
	_, err = r.q.Exec(context.Background(), query,
		ret.ID, ret.ReturnNumber, ret.InvoiceID, ret.InvoiceNumber, ret.CustomerID, details,
		items, ret.TotalReturnValue, ret.ReturnType,
		ret.CreditGenerated, ret.CreditUsed, ret.CreditBalance,
		ret.RefundAmount, ret.RefundMethod, ret.RefundDate,
		ret.ExchangeInvoiceID, ret.ExchangeInvoiceNumber, exchangeItems, ret.ExchangeDifference,
		ret.Status, ret.Notes, ret.StockAdjusted,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// GetByID returns one return, nil when absent.
func (r *ReturnRepo) GetByID(id string) (*entity.Return, error) {
	ret, err := scanReturn(r.q.QueryRow(context.Background(),
		`SELECT `+returnColumns+` FROM returns WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	return ret, nil
}

// List returns returns matching the filter, newest first.
func (r *ReturnRepo) List(filter repository.ReturnFilter) ([]*entity.Return, error) {
	where := []string{"true"}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Search != "" {
		add("(return_number ILIKE $%d OR invoice_number ILIKE $%[1]d OR customer_details->>'name' ILIKE $%[1]d OR customer_details->>'phone' ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}
	query := `SELECT ` + returnColumns + ` FROM returns WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()

	var list []*entity.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, ret)
	}
	return list, rows.Err()
}

// ListOpenCreditsByCustomer returns CREDIT returns with a positive balance,
// oldest first.
func (r *ReturnRepo) ListOpenCreditsByCustomer(customerID string) ([]*entity.Return, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+returnColumns+` FROM returns
		 WHERE customer_id = $1 AND return_type = $2 AND credit_balance > 0
		 ORDER BY created_at ASC`,
		customerID, entity.ReturnTypeCredit)
	if err != nil {
		return nil, fmt.Errorf("list open credits: %w", err)
	}
	defer rows.Close()

	var list []*entity.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, ret)
	}
	return list, rows.Err()
}

// Update rewrites the mutable portion of a return: the credit split, refund
// fields, status and notes.
func (r *ReturnRepo) Update(ret *entity.Return) error {
	query := `
		UPDATE returns SET
			credit_generated = $2, credit_used = $3, credit_balance = $4,
			refund_amount = $5, refund_method = $6, refund_date = $7,
			status = $8, notes = $9, stock_adjusted = $10,
			updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		ret.ID,
		ret.CreditGenerated, ret.CreditUsed, ret.CreditBalance,
		ret.RefundAmount, ret.RefundMethod, ret.RefundDate,
		ret.Status, ret.Notes, ret.StockAdjusted,
	)
	if err != nil {
		return fmt.Errorf("update return: %w", err)
	}
	return nil
}

// LastNumberWithPrefix returns the highest return number under a prefix, or
// empty when none exists.
func (r *ReturnRepo) LastNumberWithPrefix(prefix string) (string, error) {
	var number string
	err := r.q.QueryRow(context.Background(),
		`SELECT return_number FROM returns WHERE return_number LIKE $1 || '%'
		 ORDER BY return_number DESC LIMIT 1`, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last return number: %w", err)
	}
	return number, nil
}
