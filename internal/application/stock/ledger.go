package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

// Ledger applies the stock mutation scenarios to a product's four counters
// and appends one immutable history entry per mutation. Steps run as ordered
// writes with no cross-entity transaction; a mid-sequence failure is wrapped
// with the product id so an operator can reconcile manually.
type Ledger struct {
	products repository.ProductRepository
	history  repository.StockHistoryRepository
	damaged  repository.DamagedInventoryRepository
	log      *logger.Logger
}

// NewLedger builds the ledger engine.
func NewLedger(
	products repository.ProductRepository,
	history repository.StockHistoryRepository,
	damaged repository.DamagedInventoryRepository,
	log *logger.Logger,
) *Ledger {
	return &Ledger{products: products, history: history, damaged: damaged, log: log}
}

// MutationInput is a dual-unit amount plus operator notes.
type MutationInput struct {
	Boxes       int
	Pieces      int
	Notes       string
	PerformedBy string
}

// addQuantity folds a delta into a counter in total-piece space and
// re-normalizes. Two additions can each stay under piecesPerBox yet sum over
// it, so normalization happens after every mutation.
func addQuantity(q units.Quantity, deltaBoxes, deltaPieces, ppb int) (units.Quantity, error) {
	current, err := units.ToTotalPieces(q.Boxes, q.Pieces, ppb)
	if err != nil {
		return units.Quantity{}, err
	}
	delta, err := units.ToTotalPieces(deltaBoxes, deltaPieces, ppb)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NormalizePieces(current+delta, ppb)
}

// subQuantityFloored subtracts in total-piece space, flooring at zero.
func subQuantityFloored(q units.Quantity, deltaBoxes, deltaPieces, ppb int) (units.Quantity, error) {
	current, err := units.ToTotalPieces(q.Boxes, q.Pieces, ppb)
	if err != nil {
		return units.Quantity{}, err
	}
	delta, err := units.ToTotalPieces(deltaBoxes, deltaPieces, ppb)
	if err != nil {
		return units.Quantity{}, err
	}
	remaining := current - delta
	if remaining < 0 {
		remaining = 0
	}
	return units.NormalizePieces(remaining, ppb)
}

func (l *Ledger) getProduct(id string) (*entity.Product, error) {
	product, err := l.products.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (l *Ledger) saveEntry(entry *entity.StockHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	if entry.PerformedBy == "" {
		entry.PerformedBy = "system"
	}
	if err := l.history.Create(entry); err != nil {
		return fmt.Errorf("persist stock history for product %s: %w", entry.ProductID, err)
	}
	return nil
}

// AddStock records a supplier delivery: stock += delta, no availability
// check. The history snapshot is the stock counter after the addition.
func (l *Ledger) AddStock(productID string, in MutationInput) (*entity.Product, error) {
	if in.Boxes < 0 || in.Pieces < 0 {
		return nil, fmt.Errorf("%w: boxes and pieces cannot be negative", domain.ErrInvalidInput)
	}
	if in.Boxes == 0 && in.Pieces == 0 {
		return nil, fmt.Errorf("%w: must add at least 1 piece", domain.ErrInvalidInput)
	}
	product, err := l.getProduct(productID)
	if err != nil {
		return nil, err
	}

	newStock, err := addQuantity(product.Stock, in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Stock = newStock
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	err = l.saveEntry(&entity.StockHistory{
		ProductID:   product.ID,
		Action:      entity.ActionAdd,
		Change:      units.Quantity{Boxes: in.Boxes, Pieces: in.Pieces},
		Quantity:    product.Stock,
		Notes:       in.Notes,
		PerformedBy: in.PerformedBy,
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// RecordSale records a direct counter sale: sales += delta after an
// availability check in total-piece space.
func (l *Ledger) RecordSale(productID string, in MutationInput) (*entity.Product, error) {
	product, err := l.getProduct(productID)
	if err != nil {
		return nil, err
	}

	requested, err := units.ToTotalPieces(in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	available, err := product.Available()
	if err != nil {
		return nil, err
	}
	if check := units.ValidateQuantity(requested, available.TotalPieces, "sale"); !check.IsValid {
		if requested > available.TotalPieces {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, check.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, check.Message)
	}

	newSales, err := addQuantity(product.Sales, in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Sales = newSales
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	afterAvailable, err := product.Available()
	if err != nil {
		return nil, err
	}
	err = l.saveEntry(&entity.StockHistory{
		ProductID:   product.ID,
		Action:      entity.ActionSell,
		Change:      units.Quantity{Boxes: in.Boxes, Pieces: in.Pieces},
		Quantity:    units.Quantity{Boxes: afterAvailable.Boxes, Pieces: afterAvailable.Pieces},
		Notes:       in.Notes,
		PerformedBy: in.PerformedBy,
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// CustomerReturn records goods coming back without an exchange: sales is
// reduced (floored at zero) and returns is increased. No availability check.
func (l *Ledger) CustomerReturn(productID string, in MutationInput) (*entity.Product, error) {
	if in.Boxes == 0 && in.Pieces == 0 {
		return nil, fmt.Errorf("%w: must return at least 1 piece", domain.ErrInvalidInput)
	}
	product, err := l.getProduct(productID)
	if err != nil {
		return nil, err
	}

	newSales, err := subQuantityFloored(product.Sales, in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	newReturns, err := addQuantity(product.Returns, in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Sales = newSales
	product.Returns = newReturns
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	afterAvailable, err := product.Available()
	if err != nil {
		return nil, err
	}
	err = l.saveEntry(&entity.StockHistory{
		ProductID:   product.ID,
		Action:      entity.ActionReturn,
		Change:      units.Quantity{Boxes: in.Boxes, Pieces: in.Pieces},
		Quantity:    units.Quantity{Boxes: afterAvailable.Boxes, Pieces: afterAvailable.Pieces},
		Notes:       in.Notes,
		PerformedBy: in.PerformedBy,
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ShopDamage records breakage in the shop: damage += delta after an
// availability check, plus one DamagedInventory record.
func (l *Ledger) ShopDamage(productID string, in MutationInput) (*entity.Product, error) {
	product, err := l.getProduct(productID)
	if err != nil {
		return nil, err
	}

	requested, err := units.ToTotalPieces(in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	available, err := product.Available()
	if err != nil {
		return nil, err
	}
	if check := units.ValidateQuantity(requested, available.TotalPieces, "damage"); !check.IsValid {
		if requested > available.TotalPieces {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, check.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, check.Message)
	}

	newDamage, err := addQuantity(product.Damage, in.Boxes, in.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Damage = newDamage
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	record := &entity.DamagedInventory{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Quantity:    units.Quantity{Boxes: in.Boxes, Pieces: in.Pieces},
		DamageType:  entity.DamageTypeShop,
		Date:        time.Now(),
		Status:      entity.DamagedStatusPending,
		Notes:       in.Notes,
		Description: in.Notes,
		RecordedBy:  in.PerformedBy,
	}
	if err := l.damaged.Create(record); err != nil {
		return nil, fmt.Errorf("persist damaged inventory for product %s: %w", product.ID, err)
	}

	afterAvailable, err := product.Available()
	if err != nil {
		return nil, err
	}
	err = l.saveEntry(&entity.StockHistory{
		ProductID:   product.ID,
		Action:      entity.ActionDamageShop,
		Change:      units.Quantity{Boxes: in.Boxes, Pieces: in.Pieces},
		Quantity:    units.Quantity{Boxes: afterAvailable.Boxes, Pieces: afterAvailable.Pieces},
		Notes:       in.Notes,
		DamageType:  entity.DamageTypeShop,
		PerformedBy: in.PerformedBy,
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// SellForInvoice applies one invoice line to the product's sales counter and
// writes the SALE ledger entry. Insufficient availability only logs a
// warning: invoice creation is never blocked by stock levels.
func (l *Ledger) SellForInvoice(product *entity.Product, qty units.Quantity, invoiceID, invoiceNumber, customerID string) error {
	requested, err := units.ToTotalPieces(qty.Boxes, qty.Pieces, product.PiecesPerBox)
	if err != nil {
		return err
	}
	available, err := product.Available()
	if err != nil {
		return err
	}
	if requested > available.TotalPieces {
		l.log.Warn().
			Str("product_id", product.ID).
			Str("product_name", product.Name).
			Int("requested_pieces", requested).
			Int("available_pieces", available.TotalPieces).
			Msg("insufficient stock for invoice item, proceeding anyway")
	}

	newSales, err := addQuantity(product.Sales, qty.Boxes, qty.Pieces, product.PiecesPerBox)
	if err != nil {
		return err
	}
	product.Sales = newSales
	if err := l.products.Update(product); err != nil {
		return fmt.Errorf("update product %s for invoice %s: %w", product.ID, invoiceID, err)
	}

	afterAvailable, err := product.Available()
	if err != nil {
		return err
	}
	return l.saveEntry(&entity.StockHistory{
		ProductID:  product.ID,
		Action:     entity.ActionSale,
		Change:     qty,
		Quantity:   units.Quantity{Boxes: afterAvailable.Boxes, Pieces: afterAvailable.Pieces},
		Notes:      fmt.Sprintf("Sale - Invoice: %s", invoiceNumber),
		InvoiceID:  invoiceID,
		CustomerID: customerID,
	})
}

// ReturnForInvoice adds a returned invoice line to the product's returns
// counter and writes the RETURN ledger entry.
func (l *Ledger) ReturnForInvoice(product *entity.Product, qty units.Quantity, invoiceID, invoiceNumber, customerID, reason string) error {
	newReturns, err := addQuantity(product.Returns, qty.Boxes, qty.Pieces, product.PiecesPerBox)
	if err != nil {
		return err
	}
	product.Returns = newReturns
	if err := l.products.Update(product); err != nil {
		return fmt.Errorf("update product %s for invoice %s: %w", product.ID, invoiceID, err)
	}

	afterAvailable, err := product.Available()
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "Not specified"
	}
	return l.saveEntry(&entity.StockHistory{
		ProductID:  product.ID,
		Action:     entity.ActionReturnUpper,
		Change:     qty,
		Quantity:   units.Quantity{Boxes: afterAvailable.Boxes, Pieces: afterAvailable.Pieces},
		Notes:      fmt.Sprintf("Customer return - Invoice #%s - %s", invoiceNumber, reason),
		InvoiceID:  invoiceID,
		CustomerID: customerID,
	})
}

// DeleteInvoiceHistory removes every ledger entry written for an invoice,
// used before re-applying edited lines and on invoice delete.
func (l *Ledger) DeleteInvoiceHistory(invoiceID string) error {
	if err := l.history.DeleteByInvoice(invoiceID); err != nil {
		return fmt.Errorf("delete stock history for invoice %s: %w", invoiceID, err)
	}
	return nil
}

// ReverseSale subtracts an invoice line's contribution from the sales
// counter (floored at zero), used by invoice edit and delete.
func (l *Ledger) ReverseSale(productID string, qty units.Quantity) error {
	product, err := l.products.GetByID(productID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", productID, err)
	}
	if product == nil {
		// Product master gone; nothing to reverse.
		l.log.Warn().Str("product_id", productID).Msg("product not found while reversing sale")
		return nil
	}
	newSales, err := subQuantityFloored(product.Sales, qty.Boxes, qty.Pieces, product.PiecesPerBox)
	if err != nil {
		return err
	}
	product.Sales = newSales
	if err := l.products.Update(product); err != nil {
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}
	return nil
}
