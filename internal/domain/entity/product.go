package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// Product is a stock-keeping unit. The four counters (stock, sales, damage,
// returns) are dual-unit pairs; available quantity is always derived from
// them, never stored.
type Product struct {
	ID          string
	Name        string
	SKU         string
	Description string

	// Classification: Floor, Wall, Parking, Other; SubType only for Floor.
	Type    string
	SubType string
	Size    string // 1×1, 1×1.5, 1×2, 2×2, 2×4, 16×16

	PiecesPerBox int

	Stock   units.Quantity
	Sales   units.Quantity
	Damage  units.Quantity
	Returns units.Quantity

	HSNNo    string
	Brand    string
	Location string

	Images []string
	Link3D string

	Supplier       string
	CostPerBox     decimal.Decimal
	PricePerBox    decimal.Decimal
	LastCostUpdate *time.Time

	LowStockThreshold int
	IsActive          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available derives the current sellable quantity.
func (p *Product) Available() (units.Available, error) {
	return units.CalculateAvailable(p.Stock, p.Sales, p.Damage, p.Returns, p.PiecesPerBox)
}
