package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// Return types.
const (
	ReturnTypeCredit   = "CREDIT"
	ReturnTypeRefund   = "REFUND"
	ReturnTypeExchange = "EXCHANGE"
)

// Return statuses.
const (
	ReturnStatusPending   = "PENDING"
	ReturnStatusApproved  = "APPROVED"
	ReturnStatusCompleted = "COMPLETED"
	ReturnStatusCancelled = "CANCELLED"
)

// Return reasons.
const (
	ReasonDamaged         = "DAMAGED"
	ReasonWrongItem       = "WRONG_ITEM"
	ReasonQualityIssue    = "QUALITY_ISSUE"
	ReasonCustomerRequest = "CUSTOMER_REQUEST"
	ReasonExchange        = "EXCHANGE"
	ReasonOther           = "OTHER"
)

// ReturnItem is one returned line with its original invoice pricing.
type ReturnItem struct {
	ProductID    string         `json:"productId"`
	ProductName  string         `json:"productName"`
	ProductType  string         `json:"productType,omitempty"`
	ProductSize  string         `json:"productSize,omitempty"`
	PiecesPerBox int            `json:"piecesPerBox"`
	Quantity     units.Quantity `json:"quantity"`

	OriginalPricePerBox decimal.Decimal `json:"originalPricePerBox"`
	OriginalItemTotal   decimal.Decimal `json:"originalItemTotal"`
	ReturnValue         decimal.Decimal `json:"returnValue"`

	ReturnReason string `json:"returnReason"`
	Condition    string `json:"condition"` // GOOD, DAMAGED, DEFECTIVE
}

// ExchangeItem is a replacement line on an EXCHANGE-type return.
type ExchangeItem struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	PiecesPerBox int             `json:"piecesPerBox"`
	Quantity     units.Quantity  `json:"quantity"`
	PricePerBox  decimal.Decimal `json:"pricePerBox"`
	ItemTotal    decimal.Decimal `json:"itemTotal"`
}

// Return is one return/exchange event against an invoice. For CREDIT-type
// returns the credit triple is consumable FIFO by later invoices; only the
// balance/used split mutates after creation.
type Return struct {
	ID           string
	ReturnNumber string

	InvoiceID     string
	InvoiceNumber string
	CustomerID    string

	CustomerDetails CustomerSnapshot

	Items []ReturnItem

	TotalReturnValue decimal.Decimal
	ReturnType       string

	CreditGenerated decimal.Decimal
	CreditUsed      decimal.Decimal
	CreditBalance   decimal.Decimal

	RefundAmount decimal.Decimal
	RefundMethod string
	RefundDate   *time.Time

	ExchangeInvoiceID     string
	ExchangeInvoiceNumber string
	ExchangeItems         []ExchangeItem
	ExchangeDifference    decimal.Decimal

	Status string
	Notes  string

	StockAdjusted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
