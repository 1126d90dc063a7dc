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

var _ repository.StockHistoryRepository = (*StockHistoryRepo)(nil)

const stockHistoryColumns = `
	id, product_id, date, action,
	change_boxes, change_pieces, quantity_boxes, quantity_pieces,
	notes, description, performed_by,
	damage_type, damage_reason, customer_name,
	related_product_id, related_transaction_id,
	invoice_id, customer_id, created_at`

// StockHistoryRepo implements the StockHistoryRepository port over
// PostgreSQL.
type StockHistoryRepo struct {
	q Querier
}

// NewStockHistoryRepository builds the ledger persistence adapter.
func NewStockHistoryRepository(q Querier) *StockHistoryRepo {
	return &StockHistoryRepo{q: q}
}

func scanStockHistory(row pgx.Row) (*entity.StockHistory, error) {
	var e entity.StockHistory
	err := row.Scan(
		&e.ID, &e.ProductID, &e.Date, &e.Action,
		&e.Change.Boxes, &e.Change.Pieces, &e.Quantity.Boxes, &e.Quantity.Pieces,
		&e.Notes, &e.Description, &e.PerformedBy,
		&e.DamageType, &e.DamageReason, &e.CustomerName,
		&e.RelatedProductID, &e.RelatedTransactionID,
		&e.InvoiceID, &e.CustomerID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create appends one ledger entry.
func (r *StockHistoryRepo) Create(entry *entity.StockHistory) error {
	query := `
		INSERT INTO stock_history (
			id, product_id, date, action,
			change_boxes, change_pieces, quantity_boxes, quantity_pieces,
			notes, description, performed_by,
			damage_type, damage_reason, customer_name,
			related_product_id, related_transaction_id,
			invoice_id, customer_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, now()
		)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProductID, entry.Date, entry.Action,
		entry.Change.Boxes, entry.Change.Pieces, entry.Quantity.Boxes, entry.Quantity.Pieces,
		entry.Notes, entry.Description, entry.PerformedBy,
		entry.DamageType, entry.DamageReason, entry.CustomerName,
		entry.RelatedProductID, entry.RelatedTransactionID,
		entry.InvoiceID, entry.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("insert stock history: %w", err)
	}
	return nil
}

// ListByProduct returns a product's ledger entries, newest first.
func (r *StockHistoryRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockHistory, error) {
	query := `SELECT ` + stockHistoryColumns + ` FROM stock_history
		WHERE product_id = $1 ORDER BY date DESC`
	args := []any{productID}
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock history by product: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockHistory
	for rows.Next() {
		entry, err := scanStockHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock history: %w", err)
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

// List returns ledger entries matching the filter plus the total count.
func (r *StockHistoryRepo) List(filter repository.StockHistoryFilter) ([]*entity.StockHistory, int, error) {
	where := []string{"true"}
	args := []any{}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM stock_history WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock history: %w", err)
	}

	query := `SELECT ` + stockHistoryColumns + ` FROM stock_history WHERE ` + cond + ` ORDER BY date DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockHistory
	for rows.Next() {
		entry, err := scanStockHistory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock history: %w", err)
		}
		list = append(list, entry)
	}
	return list, total, rows.Err()
}

// SetRelatedTransaction backfills the reciprocal exchange link.
func (r *StockHistoryRepo) SetRelatedTransaction(id, relatedID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_history SET related_transaction_id = $2 WHERE id = $1`, id, relatedID)
	if err != nil {
		return fmt.Errorf("set related transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("stock history entry not found")
	}
	return nil
}

// DeleteByInvoice removes every ledger entry tied to an invoice. Used only
// by invoice edit, which replays the sale afterwards.
func (r *StockHistoryRepo) DeleteByInvoice(invoiceID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM stock_history WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete stock history for invoice: %w", err)
	}
	return nil
}
