package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// DamageInput describes one damage transaction. Replacement fields only
// apply to the exchange variants.
type DamageInput struct {
	DamageType           string // own | customer-refund | exchange-same | exchange-different
	ProductID            string
	DamagedQuantity      units.Quantity
	ReplacementProductID string
	ReplacementQuantity  units.Quantity
	CustomerName         string
	DamageReason         string
	Description          string
	PerformedBy          string
}

// DamageResult carries every product touched and every ledger entry written.
type DamageResult struct {
	UpdatedProducts []*entity.Product
	HistoryRecords  []*entity.StockHistory
}

// RecordDamage applies one of the four damage scenarios.
//
//	own                : damage +=
//	customer-refund    : damage +=, returns +=
//	exchange-same      : damage +=, returns +=, sales += replacement
//	exchange-different : damaged product damage +=, returns +=;
//	                     replacement product: sales +=; two linked entries
func (l *Ledger) RecordDamage(in DamageInput) (*DamageResult, error) {
	if in.DamageType == "" || in.ProductID == "" {
		return nil, fmt.Errorf("%w: damageType and productId are required", domain.ErrInvalidInput)
	}
	if in.DamagedQuantity.Boxes < 0 || in.DamagedQuantity.Pieces < 0 {
		return nil, fmt.Errorf("%w: damaged quantity cannot be negative", domain.ErrInvalidInput)
	}
	if in.DamagedQuantity.Boxes == 0 && in.DamagedQuantity.Pieces == 0 {
		return nil, fmt.Errorf("%w: must damage at least 1 piece", domain.ErrInvalidInput)
	}

	product, err := l.getProduct(in.ProductID)
	if err != nil {
		return nil, err
	}

	switch in.DamageType {
	case entity.DamageTypeOwn:
		return l.damageOwn(product, in)
	case entity.DamageTypeRefund:
		return l.damageCustomerRefund(product, in)
	case entity.DamageTypeExchangeSame:
		return l.damageExchangeSame(product, in)
	case entity.DamageTypeExchangeDiff:
		return l.damageExchangeDifferent(product, in)
	default:
		return nil, fmt.Errorf("%w: invalid damage type %q, must be: own, customer-refund, exchange-same, or exchange-different", domain.ErrInvalidInput, in.DamageType)
	}
}

func reasonOr(reason string) string {
	if reason == "" {
		return "Not specified"
	}
	return reason
}

func customerSuffix(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" - Customer: %s", name)
}

func (l *Ledger) recordDamagedInventory(product *entity.Product, qty units.Quantity, damageType, notes, status, by string) error {
	record := &entity.DamagedInventory{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Quantity:    qty,
		DamageType:  damageType,
		Date:        time.Now(),
		Status:      status,
		Notes:       notes,
		Description: notes,
		RecordedBy:  by,
	}
	if err := l.damaged.Create(record); err != nil {
		return fmt.Errorf("persist damaged inventory for product %s: %w", product.ID, err)
	}
	return nil
}

func (l *Ledger) damageOwn(product *entity.Product, in DamageInput) (*DamageResult, error) {
	newDamage, err := addQuantity(product.Damage, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Damage = newDamage
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	if err := l.recordDamagedInventory(product, in.DamagedQuantity, entity.DamageTypeShop, in.Description, entity.DamagedStatusPending, in.PerformedBy); err != nil {
		return nil, err
	}

	available, err := product.Available()
	if err != nil {
		return nil, err
	}
	entry := &entity.StockHistory{
		ProductID: product.ID,
		Action:    entity.ActionDamageOwn,
		Change:    in.DamagedQuantity,
		Quantity:  units.Quantity{Boxes: available.Boxes, Pieces: available.Pieces},
		Notes: fmt.Sprintf("Own damage: %s - Reason: %s",
			units.FormatQty(in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces), reasonOr(in.DamageReason)),
		Description:  in.Description,
		DamageType:   entity.DamageTypeOwn,
		DamageReason: in.DamageReason,
		PerformedBy:  in.PerformedBy,
	}
	if err := l.saveEntry(entry); err != nil {
		return nil, err
	}
	return &DamageResult{
		UpdatedProducts: []*entity.Product{product},
		HistoryRecords:  []*entity.StockHistory{entry},
	}, nil
}

func (l *Ledger) damageCustomerRefund(product *entity.Product, in DamageInput) (*DamageResult, error) {
	newDamage, err := addQuantity(product.Damage, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	newReturns, err := addQuantity(product.Returns, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Damage = newDamage
	product.Returns = newReturns
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	if err := l.recordDamagedInventory(product, in.DamagedQuantity, "customer", in.Description, entity.DamagedStatusReturned, in.PerformedBy); err != nil {
		return nil, err
	}

	available, err := product.Available()
	if err != nil {
		return nil, err
	}
	entry := &entity.StockHistory{
		ProductID: product.ID,
		Action:    entity.ActionDamageRefund,
		Change:    in.DamagedQuantity,
		Quantity:  units.Quantity{Boxes: available.Boxes, Pieces: available.Pieces},
		Notes: fmt.Sprintf("Customer return (damaged): %s%s - Refunded - Reason: %s",
			units.FormatQty(in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces),
			customerSuffix(in.CustomerName), reasonOr(in.DamageReason)),
		Description:  in.Description,
		DamageType:   entity.DamageTypeRefund,
		DamageReason: in.DamageReason,
		CustomerName: in.CustomerName,
		PerformedBy:  in.PerformedBy,
	}
	if err := l.saveEntry(entry); err != nil {
		return nil, err
	}
	return &DamageResult{
		UpdatedProducts: []*entity.Product{product},
		HistoryRecords:  []*entity.StockHistory{entry},
	}, nil
}

func (l *Ledger) damageExchangeSame(product *entity.Product, in DamageInput) (*DamageResult, error) {
	// The replacement quantity consumes availability and must be covered.
	requested, err := units.ToTotalPieces(in.ReplacementQuantity.Boxes, in.ReplacementQuantity.Pieces, product.PiecesPerBox)
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

	newDamage, err := addQuantity(product.Damage, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	newReturns, err := addQuantity(product.Returns, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	newSales, err := addQuantity(product.Sales, in.ReplacementQuantity.Boxes, in.ReplacementQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Damage = newDamage
	product.Returns = newReturns
	product.Sales = newSales
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	if err := l.recordDamagedInventory(product, in.DamagedQuantity, "customer", in.Description, entity.DamagedStatusReturned, in.PerformedBy); err != nil {
		return nil, err
	}

	afterAvailable, err := product.Available()
	if err != nil {
		return nil, err
	}
	entry := &entity.StockHistory{
		ProductID: product.ID,
		Action:    entity.ActionDamageExchSame,
		Change:    in.DamagedQuantity,
		Quantity:  units.Quantity{Boxes: afterAvailable.Boxes, Pieces: afterAvailable.Pieces},
		Notes: fmt.Sprintf("Customer exchange (same): %s damaged returned, %s fresh given%s",
			units.FormatQty(in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces),
			units.FormatQty(in.ReplacementQuantity.Boxes, in.ReplacementQuantity.Pieces),
			customerSuffix(in.CustomerName)),
		Description:  in.Description,
		DamageType:   entity.DamageTypeExchangeSame,
		DamageReason: in.DamageReason,
		CustomerName: in.CustomerName,
		PerformedBy:  in.PerformedBy,
	}
	if err := l.saveEntry(entry); err != nil {
		return nil, err
	}
	return &DamageResult{
		UpdatedProducts: []*entity.Product{product},
		HistoryRecords:  []*entity.StockHistory{entry},
	}, nil
}

func (l *Ledger) damageExchangeDifferent(product *entity.Product, in DamageInput) (*DamageResult, error) {
	if in.ReplacementProductID == "" || (in.ReplacementQuantity.Boxes == 0 && in.ReplacementQuantity.Pieces == 0) {
		return nil, fmt.Errorf("%w: replacement product and quantity required for different product exchange", domain.ErrInvalidInput)
	}

	replacement, err := l.products.GetByID(in.ReplacementProductID)
	if err != nil {
		return nil, fmt.Errorf("load replacement product %s: %w", in.ReplacementProductID, err)
	}
	if replacement == nil {
		return nil, fmt.Errorf("%w: replacement product", domain.ErrNotFound)
	}

	// Availability is checked on the replacement product, which hands out
	// fresh stock.
	requested, err := units.ToTotalPieces(in.ReplacementQuantity.Boxes, in.ReplacementQuantity.Pieces, replacement.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	replAvailable, err := replacement.Available()
	if err != nil {
		return nil, err
	}
	if check := units.ValidateQuantity(requested, replAvailable.TotalPieces, "sale"); !check.IsValid {
		if requested > replAvailable.TotalPieces {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, check.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, check.Message)
	}

	newDamage, err := addQuantity(product.Damage, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	newReturns, err := addQuantity(product.Returns, in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces, product.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Damage = newDamage
	product.Returns = newReturns
	if err := l.products.Update(product); err != nil {
		return nil, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	damagedAvailable, err := product.Available()
	if err != nil {
		return nil, err
	}

	newSales, err := addQuantity(replacement.Sales, in.ReplacementQuantity.Boxes, in.ReplacementQuantity.Pieces, replacement.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	replacement.Sales = newSales
	if err := l.products.Update(replacement); err != nil {
		return nil, fmt.Errorf("update replacement product %s: %w", replacement.ID, err)
	}

	replacementAvailable, err := replacement.Available()
	if err != nil {
		return nil, err
	}

	if err := l.recordDamagedInventory(product, in.DamagedQuantity, "customer", in.Description, entity.DamagedStatusReturned, in.PerformedBy); err != nil {
		return nil, err
	}

	// Two entries, created then linked back: the damaged entry exists before
	// the replacement entry can reference it, and gets the reciprocal id
	// patched in afterwards.
	damagedEntry := &entity.StockHistory{
		ProductID: product.ID,
		Action:    entity.ActionDamageExchDiff,
		Change:    in.DamagedQuantity,
		Quantity:  units.Quantity{Boxes: damagedAvailable.Boxes, Pieces: damagedAvailable.Pieces},
		Notes: fmt.Sprintf("Customer exchange: %s damaged returned, exchanged with %s%s",
			units.FormatQty(in.DamagedQuantity.Boxes, in.DamagedQuantity.Pieces),
			replacement.Name, customerSuffix(in.CustomerName)),
		Description:      in.Description,
		DamageType:       entity.DamageTypeExchangeDiff,
		DamageReason:     in.DamageReason,
		CustomerName:     in.CustomerName,
		RelatedProductID: replacement.ID,
		PerformedBy:      in.PerformedBy,
	}
	if err := l.saveEntry(damagedEntry); err != nil {
		return nil, err
	}

	replacementEntry := &entity.StockHistory{
		ProductID: replacement.ID,
		Action:    entity.ActionSaleExchange,
		Change:    in.ReplacementQuantity,
		Quantity:  units.Quantity{Boxes: replacementAvailable.Boxes, Pieces: replacementAvailable.Pieces},
		Notes: fmt.Sprintf("Exchange for damaged %s - %s given%s",
			product.Name,
			units.FormatQty(in.ReplacementQuantity.Boxes, in.ReplacementQuantity.Pieces),
			customerSuffix(in.CustomerName)),
		Description:          in.Description,
		CustomerName:         in.CustomerName,
		RelatedProductID:     product.ID,
		RelatedTransactionID: damagedEntry.ID,
		PerformedBy:          in.PerformedBy,
	}
	if err := l.saveEntry(replacementEntry); err != nil {
		return nil, err
	}

	if err := l.history.SetRelatedTransaction(damagedEntry.ID, replacementEntry.ID); err != nil {
		return nil, fmt.Errorf("link exchange entries %s/%s: %w", damagedEntry.ID, replacementEntry.ID, err)
	}
	damagedEntry.RelatedTransactionID = replacementEntry.ID

	return &DamageResult{
		UpdatedProducts: []*entity.Product{product, replacement},
		HistoryRecords:  []*entity.StockHistory{damagedEntry, replacementEntry},
	}, nil
}
