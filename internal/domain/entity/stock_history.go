package entity

import (
	"time"

	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// Ledger action tags. Mixed-case values are kept as stored by the running
// system; reports and the frontend filter on them verbatim.
const (
	ActionAdd              = "add"
	ActionAddStock         = "add_stock"
	ActionSale             = "SALE"
	ActionSell             = "sell"
	ActionReturn           = "return"
	ActionReturnUpper      = "RETURN"
	ActionDamageShop       = "damage_shop"
	ActionProductUpdate    = "Product Update"
	ActionDamageOwn        = "Damage (Own)"
	ActionDamageRefund     = "Damage (Customer Refund)"
	ActionDamageExchSame   = "Damage (Customer Exchange - Same)"
	ActionDamageExchDiff   = "Damage (Customer Exchange - Different)"
	ActionSaleExchange     = "Sale (Exchange)"
)

// Damage type tags on ledger entries.
const (
	DamageTypeShop         = "shop"
	DamageTypeOwn          = "own"
	DamageTypeRefund       = "customer-refund"
	DamageTypeExchangeSame = "exchange-same"
	DamageTypeExchangeDiff = "exchange-different"
)

// StockHistory is one append-only ledger entry per counter mutation.
// Entries are immutable after creation, except that the first half of an
// exchange-different pair gets its RelatedTransactionID backfilled once the
// second entry exists.
type StockHistory struct {
	ID        string
	ProductID string
	Date      time.Time
	Action    string

	// The delta applied by this mutation.
	Change units.Quantity
	// Counter snapshot after the mutation: available quantity for
	// consuming actions, stock for additions.
	Quantity units.Quantity

	Notes       string // system-generated
	Description string // user-provided
	PerformedBy string

	DamageType   string
	DamageReason string
	CustomerName string

	RelatedProductID     string
	RelatedTransactionID string

	InvoiceID  string
	CustomerID string

	CreatedAt time.Time
}
