package dto

import "github.com/shopspring/decimal"

// CreateProductRequest is the product intake form. A matching active product
// absorbs the stock instead of creating a duplicate.
type CreateProductRequest struct {
	Name         string          `json:"name"`
	Type         string          `json:"type" validate:"required"`
	SubType      string          `json:"subType"`
	Size         string          `json:"size" validate:"required"`
	PiecesPerBox int             `json:"piecesPerBox" validate:"min=0"`
	Stock        QuantityInput   `json:"stock"`
	Description  string          `json:"description"`
	SKU          string          `json:"sku"`
	HSNNo        string          `json:"hsnNo"`
	Brand        string          `json:"brand"`
	Supplier     string          `json:"supplier"`
	CostPerBox   decimal.Decimal `json:"costPerBox"`
	PricePerBox  decimal.Decimal `json:"pricePerBox"`
	Link3D       string          `json:"link3D"`
	Location     string          `json:"location"`
	Images       []string        `json:"images"`
}

// UpdateProductRequest is a partial update; nil fields stay untouched.
type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Type         *string          `json:"type"`
	SubType      *string          `json:"subType"`
	Size         *string          `json:"size"`
	Description  *string          `json:"description"`
	SKU          *string          `json:"sku"`
	HSNNo        *string          `json:"hsnNo"`
	Brand        *string          `json:"brand"`
	Supplier     *string          `json:"supplier"`
	CostPerBox   *decimal.Decimal `json:"costPerBox"`
	PricePerBox  *decimal.Decimal `json:"pricePerBox"`
	Location     *string          `json:"location"`
	Link3D       *string          `json:"link3D"`
	Images       []string         `json:"images"`
	PiecesPerBox *int             `json:"piecesPerBox"`
	Stock        *QuantityInput   `json:"stock"`
	Sales        *QuantityInput   `json:"sales"`
	Damage       *QuantityInput   `json:"damage"`
	Returns      *QuantityInput   `json:"returns"`
	UpdateNotes  string           `json:"updateNotes"`
}

// StockMutationRequest covers add-stock, sale, return and shop damage on one
// product.
type StockMutationRequest struct {
	Boxes  int    `json:"boxes" validate:"min=0"`
	Pieces int    `json:"pieces" validate:"min=0"`
	Notes  string `json:"notes"`
}

// ThresholdRequest sets the low-stock alert level on one product.
type ThresholdRequest struct {
	Threshold int `json:"threshold" validate:"min=0"`
}

// BulkThresholdRequest sets the alert level on many products.
type BulkThresholdRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1"`
	Threshold  int      `json:"threshold" validate:"min=0"`
}

// DamageRequest is the damage-transaction form.
type DamageRequest struct {
	DamageType           string        `json:"damageType" validate:"required"`
	ProductID            string        `json:"productId" validate:"required"`
	DamagedQuantity      QuantityInput `json:"damagedQuantity"`
	ReplacementProductID string        `json:"replacementProductId"`
	ReplacementQuantity  QuantityInput `json:"replacementQuantity"`
	CustomerName         string        `json:"customerName"`
	DamageReason         string        `json:"damageReason"`
	Description          string        `json:"description"`
}

// DamagedStatusRequest flips a damaged-inventory record's disposition.
type DamagedStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending disposed repaired returned"`
}
