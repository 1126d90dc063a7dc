package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

// ProductUseCase covers the product master: creation with merge-into-existing
// on matching classification, listing, updates with a change-tracked ledger
// entry, soft delete, thresholds and damaged-inventory views.
type ProductUseCase struct {
	products repository.ProductRepository
	history  repository.StockHistoryRepository
	damaged  repository.DamagedInventoryRepository
	log      *logger.Logger
}

// NewProductUseCase builds the use case.
func NewProductUseCase(
	products repository.ProductRepository,
	history repository.StockHistoryRepository,
	damaged repository.DamagedInventoryRepository,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{products: products, history: history, damaged: damaged, log: log}
}

// CreateProductInput carries the intake form for a new product or a stock
// top-up of an existing one.
type CreateProductInput struct {
	Name         string
	Type         string
	SubType      string
	Size         string
	PiecesPerBox int
	Stock        units.Quantity
	Description  string
	SKU          string
	HSNNo        string
	Brand        string
	Supplier     string
	CostPerBox   decimal.Decimal
	PricePerBox  decimal.Decimal
	Link3D       string
	Location     string
	Images       []string
	PerformedBy  string
}

// CreateResult reports whether the intake merged into an existing product.
type CreateResult struct {
	Product *entity.Product
	Merged  bool
}

// Create either merges the stock into an active product with the same name
// and classification, or creates a new product with an initial-stock ledger
// entry.
func (uc *ProductUseCase) Create(in CreateProductInput) (*CreateResult, error) {
	if in.Type == "" || in.Size == "" {
		return nil, fmt.Errorf("%w: type and size are required", domain.ErrInvalidInput)
	}
	if in.Type == "Floor" && in.SubType == "" {
		return nil, fmt.Errorf("%w: subType is required for Floor tiles", domain.ErrInvalidInput)
	}

	subType := in.SubType
	if in.Type != "Floor" {
		subType = ""
	}

	if in.Name != "" {
		existing, err := uc.products.FindActiveMatch(in.Name, in.Type, subType, in.Size)
		if err != nil {
			return nil, fmt.Errorf("match product: %w", err)
		}
		if existing != nil {
			newStock, err := addQuantity(existing.Stock, in.Stock.Boxes, in.Stock.Pieces, existing.PiecesPerBox)
			if err != nil {
				return nil, err
			}
			existing.Stock = newStock
			if err := uc.products.Update(existing); err != nil {
				return nil, fmt.Errorf("update product %s: %w", existing.ID, err)
			}

			notes := in.Description
			if notes == "" {
				notes = "Stock added"
			}
			entry := &entity.StockHistory{
				ID:          uuid.New().String(),
				ProductID:   existing.ID,
				Date:        time.Now(),
				Action:      entity.ActionAddStock,
				Change:      in.Stock,
				Quantity:    existing.Stock,
				Notes:       notes,
				PerformedBy: in.PerformedBy,
			}
			if err := uc.history.Create(entry); err != nil {
				return nil, fmt.Errorf("persist stock history for product %s: %w", existing.ID, err)
			}
			return &CreateResult{Product: existing, Merged: true}, nil
		}
	}

	ppb := in.PiecesPerBox
	if ppb == 0 {
		ppb = units.PiecesPerBox(in.Size, 0)
	}
	if ppb == 0 {
		return nil, fmt.Errorf("%w: unknown size %q and no piecesPerBox given", domain.ErrInvalidInput, in.Size)
	}

	name := in.Name
	if name == "" {
		if in.Type == "Floor" {
			name = fmt.Sprintf("%s %s %s", in.Type, subType, in.Size)
		} else {
			name = fmt.Sprintf("%s %s", in.Type, in.Size)
		}
	}

	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		Type:         in.Type,
		SubType:      subType,
		Size:         in.Size,
		PiecesPerBox: ppb,
		Stock:        in.Stock,
		Description:  in.Description,
		SKU:          in.SKU,
		HSNNo:        in.HSNNo,
		Brand:        in.Brand,
		Supplier:     in.Supplier,
		CostPerBox:   in.CostPerBox,
		PricePerBox:  in.PricePerBox,
		Link3D:       in.Link3D,
		Location:     in.Location,
		Images:       in.Images,
		IsActive:     true,
	}
	if !in.CostPerBox.IsZero() {
		now := time.Now()
		product.LastCostUpdate = &now
	}
	if err := uc.products.Create(product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	entry := &entity.StockHistory{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Date:        time.Now(),
		Action:      entity.ActionAddStock,
		Change:      product.Stock,
		Quantity:    product.Stock,
		Notes:       "Initial stock",
		PerformedBy: in.PerformedBy,
	}
	if err := uc.history.Create(entry); err != nil {
		return nil, fmt.Errorf("persist stock history for product %s: %w", product.ID, err)
	}
	return &CreateResult{Product: product, Merged: false}, nil
}

// List returns active products matching the filter plus the total count.
func (uc *ProductUseCase) List(filter repository.ProductFilter) ([]*entity.Product, int, error) {
	return uc.products.List(filter)
}

// Get returns one active product.
func (uc *ProductUseCase) Get(id string) (*entity.Product, error) {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if product == nil || !product.IsActive {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// UpdateProductInput carries a partial product update. Counter fields, when
// present, replace the counter with boxes plus normalized pieces overflow.
type UpdateProductInput struct {
	Name         *string
	Type         *string
	SubType      *string
	Size         *string
	Description  *string
	SKU          *string
	HSNNo        *string
	Brand        *string
	Supplier     *string
	CostPerBox   *decimal.Decimal
	PricePerBox  *decimal.Decimal
	Location     *string
	Link3D       *string
	Images       []string
	PiecesPerBox *int
	Stock        *units.Quantity
	Sales        *units.Quantity
	Damage       *units.Quantity
	Returns      *units.Quantity
	UpdateNotes  string
	PerformedBy  string
}

// Update applies the partial update, collecting a human-readable change list
// that lands in a "Product Update" ledger entry. A failed history write is
// logged but does not fail the update.
func (uc *ProductUseCase) Update(id string, in UpdateProductInput) (*entity.Product, error) {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var changes []string

	setCounter := func(target *units.Quantity, in units.Quantity, label string) error {
		normalized, err := units.NormalizePieces(in.Pieces, product.PiecesPerBox)
		if err != nil {
			return err
		}
		*target = units.Quantity{Boxes: in.Boxes + normalized.Boxes, Pieces: normalized.Pieces}
		changes = append(changes, label+" updated")
		return nil
	}

	if in.Stock != nil {
		if err := setCounter(&product.Stock, *in.Stock, "Stock"); err != nil {
			return nil, err
		}
	}
	if in.Sales != nil {
		if err := setCounter(&product.Sales, *in.Sales, "Sales"); err != nil {
			return nil, err
		}
	}
	if in.Damage != nil {
		if err := setCounter(&product.Damage, *in.Damage, "Damage"); err != nil {
			return nil, err
		}
	}
	if in.Returns != nil {
		if err := setCounter(&product.Returns, *in.Returns, "Returns"); err != nil {
			return nil, err
		}
	}

	if in.PiecesPerBox != nil && *in.PiecesPerBox != product.PiecesPerBox {
		changes = append(changes, fmt.Sprintf("Tiles per box: %d → %d", product.PiecesPerBox, *in.PiecesPerBox))
		product.PiecesPerBox = *in.PiecesPerBox
	}

	setString := func(target *string, in *string, label string, quoted bool) {
		if in == nil || *in == *target {
			return
		}
		if quoted {
			changes = append(changes, fmt.Sprintf("%s: %q → %q", label, *target, *in))
		} else {
			changes = append(changes, label+" updated")
		}
		*target = *in
	}
	setString(&product.Name, in.Name, "Name", true)
	setString(&product.Type, in.Type, "Type", true)
	setString(&product.SubType, in.SubType, "SubType", true)
	setString(&product.Size, in.Size, "Size", true)
	setString(&product.Description, in.Description, "description", false)
	setString(&product.SKU, in.SKU, "SKU", true)
	setString(&product.HSNNo, in.HSNNo, "hsnNo", false)
	setString(&product.Brand, in.Brand, "brand", false)
	setString(&product.Supplier, in.Supplier, "supplier", false)
	setString(&product.Location, in.Location, "location", false)
	setString(&product.Link3D, in.Link3D, "link3D", false)
	if in.CostPerBox != nil && !in.CostPerBox.Equal(product.CostPerBox) {
		changes = append(changes, fmt.Sprintf("Cost per box: %s → %s", product.CostPerBox, in.CostPerBox))
		product.CostPerBox = *in.CostPerBox
		now := time.Now()
		product.LastCostUpdate = &now
	}
	if in.PricePerBox != nil && !in.PricePerBox.Equal(product.PricePerBox) {
		changes = append(changes, fmt.Sprintf("Price per box: %s → %s", product.PricePerBox, in.PricePerBox))
		product.PricePerBox = *in.PricePerBox
	}
	if in.Images != nil {
		product.Images = in.Images
		changes = append(changes, "images updated")
	}

	if err := uc.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	if len(changes) > 0 {
		notes := in.UpdateNotes
		if notes == "" {
			notes = joinChanges(changes)
		}
		entry := &entity.StockHistory{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			Date:        time.Now(),
			Action:      entity.ActionProductUpdate,
			Change:      units.Quantity{},
			Quantity:    product.Stock,
			Notes:       notes,
			PerformedBy: in.PerformedBy,
		}
		if err := uc.history.Create(entry); err != nil {
			uc.log.Error().Err(err).Str("product_id", product.ID).Msg("failed to record product update history")
		}
	}
	return product, nil
}

func joinChanges(changes []string) string {
	out := ""
	for i, c := range changes {
		if i > 0 {
			out += "; "
		}
		out += c
	}
	return out
}

// SoftDelete flips the active flag, never removing the row.
func (uc *ProductUseCase) SoftDelete(id string) error {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return fmt.Errorf("load product %s: %w", id, err)
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.products.SetActive(id, false)
}

// UpdateLowStockThreshold sets the alert threshold on one product.
func (uc *ProductUseCase) UpdateLowStockThreshold(id string, threshold int) (*entity.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must be 0 or greater", domain.ErrInvalidInput)
	}
	product, err := uc.products.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.products.UpdateLowStockThreshold(id, threshold); err != nil {
		return nil, fmt.Errorf("update threshold for product %s: %w", id, err)
	}
	product.LowStockThreshold = threshold
	return product, nil
}

// BulkUpdateLowStockThreshold sets the alert threshold on many products and
// returns how many rows changed.
func (uc *ProductUseCase) BulkUpdateLowStockThreshold(ids []string, threshold int) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: product IDs array is required", domain.ErrInvalidInput)
	}
	if threshold < 0 {
		return 0, fmt.Errorf("%w: threshold must be 0 or greater", domain.ErrInvalidInput)
	}
	return uc.products.BulkUpdateLowStockThreshold(ids, threshold)
}

// History lists a product's ledger entries, newest first.
func (uc *ProductUseCase) History(productID string, limit, offset int) ([]*entity.StockHistory, error) {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.history.ListByProduct(productID, limit, offset)
}

// AllHistory lists ledger entries across every product, newest first.
func (uc *ProductUseCase) AllHistory(filter repository.StockHistoryFilter) ([]*entity.StockHistory, int, error) {
	return uc.history.List(filter)
}

// Damaged lists damaged-inventory records, optionally scoped to a product.
func (uc *ProductUseCase) Damaged(filter repository.DamagedFilter) ([]*entity.DamagedInventory, int, error) {
	return uc.damaged.List(filter)
}

// UpdateDamagedStatus changes the disposition of a damaged-inventory record.
func (uc *ProductUseCase) UpdateDamagedStatus(id, status string) (*entity.DamagedInventory, error) {
	switch status {
	case entity.DamagedStatusPending, entity.DamagedStatusDisposed, entity.DamagedStatusRepaired, entity.DamagedStatusReturned:
	default:
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, status)
	}
	record, err := uc.damaged.UpdateStatus(id, status)
	if err != nil {
		return nil, fmt.Errorf("update damaged record %s: %w", id, err)
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}
