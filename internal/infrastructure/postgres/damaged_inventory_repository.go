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

var _ repository.DamagedInventoryRepository = (*DamagedInventoryRepo)(nil)

const damagedColumns = `
	id, product_id, quantity_boxes, quantity_pieces, damage_type, date,
	status, notes, description, recorded_by, created_at, updated_at`

// DamagedInventoryRepo implements the DamagedInventoryRepository port over
// PostgreSQL.
type DamagedInventoryRepo struct {
	q Querier
}

// NewDamagedInventoryRepository builds the damaged-inventory persistence
// adapter.
func NewDamagedInventoryRepository(q Querier) *DamagedInventoryRepo {
	return &DamagedInventoryRepo{q: q}
}

func scanDamaged(row pgx.Row) (*entity.DamagedInventory, error) {
	var d entity.DamagedInventory
	err := row.Scan(
		&d.ID, &d.ProductID, &d.Quantity.Boxes, &d.Quantity.Pieces, &d.DamageType, &d.Date,
		&d.Status, &d.Notes, &d.Description, &d.RecordedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persists a new damaged-inventory record.
func (r *DamagedInventoryRepo) Create(record *entity.DamagedInventory) error {
	query := `
		INSERT INTO damaged_inventory (
			id, product_id, quantity_boxes, quantity_pieces, damage_type, date,
			status, notes, description, recorded_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.ProductID, record.Quantity.Boxes, record.Quantity.Pieces,
		record.DamageType, record.Date,
		record.Status, record.Notes, record.Description, record.RecordedBy,
	)
	if err != nil {
		return fmt.Errorf("insert damaged inventory: %w", err)
	}
	return nil
}

// GetByID returns one record, nil when absent.
func (r *DamagedInventoryRepo) GetByID(id string) (*entity.DamagedInventory, error) {
	record, err := scanDamaged(r.q.QueryRow(context.Background(),
		`SELECT `+damagedColumns+` FROM damaged_inventory WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get damaged inventory: %w", err)
	}
	return record, nil
}

// List returns records matching the filter plus the total count.
func (r *DamagedInventoryRepo) List(filter repository.DamagedFilter) ([]*entity.DamagedInventory, int, error) {
	where := []string{"true"}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.ProductID != "" {
		add("product_id = $%d", filter.ProductID)
	}
	if filter.DamageType != "" {
		add("damage_type = $%d", filter.DamageType)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM damaged_inventory WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count damaged inventory: %w", err)
	}

	query := `SELECT ` + damagedColumns + ` FROM damaged_inventory WHERE ` + cond + ` ORDER BY date DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list damaged inventory: %w", err)
	}
	defer rows.Close()

	var list []*entity.DamagedInventory
	for rows.Next() {
		record, err := scanDamaged(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan damaged inventory: %w", err)
		}
		list = append(list, record)
	}
	return list, total, rows.Err()
}

// UpdateStatus flips the disposition and returns the updated record, nil
// when absent.
func (r *DamagedInventoryRepo) UpdateStatus(id, status string) (*entity.DamagedInventory, error) {
	record, err := scanDamaged(r.q.QueryRow(context.Background(),
		`UPDATE damaged_inventory SET status = $2, updated_at = now()
		 WHERE id = $1 RETURNING `+damagedColumns, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update damaged inventory status: %w", err)
	}
	return record, nil
}
