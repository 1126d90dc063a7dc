package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer holds contact data plus running financial aggregates. The
// aggregates are maintained incrementally by invoice/payment/return
// operations; OutstandingBalance tracks purchases minus payments minus
// applied credits and is only ever recomputed by an explicit migration.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	GSTNumber string

	TotalPurchaseAmount decimal.Decimal
	TotalPaidAmount     decimal.Decimal
	OutstandingBalance  decimal.Decimal

	TotalInvoices    int
	LastPurchaseDate *time.Time

	IsActive bool
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
