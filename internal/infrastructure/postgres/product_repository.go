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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `
	id, name, sku, description, type, sub_type, size, pieces_per_box,
	stock_boxes, stock_pieces, sales_boxes, sales_pieces,
	damage_boxes, damage_pieces, returns_boxes, returns_pieces,
	hsn_no, brand, location, images, link_3d, supplier,
	cost_per_box, price_per_box, last_cost_update,
	low_stock_threshold, is_active, created_at, updated_at`

// ProductRepo implements the ProductRepository port over PostgreSQL. Pass a
// pool or a tx (Querier).
type ProductRepo struct {
	q Querier
}

// NewProductRepository builds the product persistence adapter.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var images []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Description, &p.Type, &p.SubType, &p.Size, &p.PiecesPerBox,
		&p.Stock.Boxes, &p.Stock.Pieces, &p.Sales.Boxes, &p.Sales.Pieces,
		&p.Damage.Boxes, &p.Damage.Pieces, &p.Returns.Boxes, &p.Returns.Pieces,
		&p.HSNNo, &p.Brand, &p.Location, &images, &p.Link3D, &p.Supplier,
		&p.CostPerBox, &p.PricePerBox, &p.LastCostUpdate,
		&p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decode product images: %w", err)
		}
	}
	return &p, nil
}

// Create persists a new product.
func (r *ProductRepo) Create(product *entity.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("encode product images: %w", err)
	}
	query := `
		INSERT INTO products (
			id, name, sku, description, type, sub_type, size, pieces_per_box,
			stock_boxes, stock_pieces, sales_boxes, sales_pieces,
			damage_boxes, damage_pieces, returns_boxes, returns_pieces,
			hsn_no, brand, location, images, link_3d, supplier,
			cost_per_box, price_per_box, last_cost_update,
			low_stock_threshold, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, now(), now()
		)`
	_, err = r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.SKU, product.Description,
		product.Type, product.SubType, product.Size, product.PiecesPerBox,
		product.Stock.Boxes, product.Stock.Pieces, product.Sales.Boxes, product.Sales.Pieces,
		product.Damage.Boxes, product.Damage.Pieces, product.Returns.Boxes, product.Returns.Pieces,
		product.HSNNo, product.Brand, product.Location, images, product.Link3D, product.Supplier,
		product.CostPerBox, product.PricePerBox, product.LastCostUpdate,
		product.LowStockThreshold, product.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID returns one product, nil when absent.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// FindActiveMatch locates an active product with the same name and
// classification for merge-on-intake.
func (r *ProductRepo) FindActiveMatch(name, productType, subType, size string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active AND lower(name) = lower($1) AND type = $2 AND sub_type = $3 AND size = $4
		LIMIT 1`
	product, err := scanProduct(r.q.QueryRow(context.Background(), query, name, productType, subType, size))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product match: %w", err)
	}
	return product, nil
}

// List returns active products matching the filter plus the total count.
func (r *ProductRepo) List(filter repository.ProductFilter) ([]*entity.Product, int, error) {
	where := []string{"is_active"}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Query != "" {
		add("name ILIKE $%d", "%"+filter.Query+"%")
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Size != "" {
		add("size = $%d", filter.Size)
	}
	if filter.HSNNo != "" {
		add("hsn_no = $%d", filter.HSNNo)
	}
	if filter.Location != "" {
		add("location = $%d", filter.Location)
	}
	if filter.InStockOnly {
		where = append(where, "(stock_boxes - sales_boxes - damage_boxes + returns_boxes) * pieces_per_box + stock_pieces - sales_pieces - damage_pieces + returns_pieces > 0")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + cond + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, product)
	}
	return list, total, rows.Err()
}

// Update rewrites every mutable column.
func (r *ProductRepo) Update(product *entity.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("encode product images: %w", err)
	}
	query := `
		UPDATE products SET
			name = $2, sku = $3, description = $4, type = $5, sub_type = $6, size = $7,
			pieces_per_box = $8,
			stock_boxes = $9, stock_pieces = $10, sales_boxes = $11, sales_pieces = $12,
			damage_boxes = $13, damage_pieces = $14, returns_boxes = $15, returns_pieces = $16,
			hsn_no = $17, brand = $18, location = $19, images = $20, link_3d = $21, supplier = $22,
			cost_per_box = $23, price_per_box = $24, last_cost_update = $25,
			updated_at = now()
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.SKU, product.Description,
		product.Type, product.SubType, product.Size, product.PiecesPerBox,
		product.Stock.Boxes, product.Stock.Pieces, product.Sales.Boxes, product.Sales.Pieces,
		product.Damage.Boxes, product.Damage.Pieces, product.Returns.Boxes, product.Returns.Pieces,
		product.HSNNo, product.Brand, product.Location, images, product.Link3D, product.Supplier,
		product.CostPerBox, product.PricePerBox, product.LastCostUpdate,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// SetActive flips the soft-delete flag.
func (r *ProductRepo) SetActive(id string, active bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	return nil
}

// UpdateLowStockThreshold sets the alert threshold on one product.
func (r *ProductRepo) UpdateLowStockThreshold(id string, threshold int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET low_stock_threshold = $2, updated_at = now() WHERE id = $1`, id, threshold)
	if err != nil {
		return fmt.Errorf("update low stock threshold: %w", err)
	}
	return nil
}

// BulkUpdateLowStockThreshold sets the threshold on many products at once.
func (r *ProductRepo) BulkUpdateLowStockThreshold(ids []string, threshold int) (int, error) {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE products SET low_stock_threshold = $2, updated_at = now() WHERE id = ANY($1)`, ids, threshold)
	if err != nil {
		return 0, fmt.Errorf("bulk update low stock threshold: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
