package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// Invoice types.
const (
	InvoiceTypeGST    = "GST"
	InvoiceTypeNonGST = "NON_GST"
)

// Invoice statuses (advisory, not a hard state machine).
const (
	InvoiceStatusActive    = "ACTIVE"
	InvoiceStatusCompleted = "COMPLETED"
	InvoiceStatusReturned  = "RETURNED"
	InvoiceStatusCancelled = "CANCELLED"
)

// Payment statuses.
const (
	PaymentStatusPaid    = "PAID"
	PaymentStatusPending = "PENDING"
	PaymentStatusPartial = "PARTIAL"
	PaymentStatusOverdue = "OVERDUE"
)

// Sales channels.
const (
	ChannelOffline = "OFFLINE"
	ChannelOnline  = "ONLINE"
)

// CustomerSnapshot is the customer data frozen into the invoice at creation.
type CustomerSnapshot struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	GSTNumber string `json:"gstNumber"`
}

// InvoiceItem is one line of an invoice. Items with IsCustom or a missing
// ProductID never touch stock.
type InvoiceItem struct {
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName"`
	ProductType string `json:"productType,omitempty"`
	ProductSize string `json:"productSize,omitempty"`
	HSNNo       string `json:"hsnNo,omitempty"`
	IsCustom    bool   `json:"isCustom,omitempty"`

	Quantity     units.Quantity `json:"quantity"`
	PiecesPerBox int            `json:"piecesPerBox"`

	PricePerBox   decimal.Decimal `json:"pricePerBox"`
	PricePerPiece decimal.Decimal `json:"pricePerPiece"`
	ItemTotal     decimal.Decimal `json:"itemTotal"`

	TaxRate   decimal.Decimal `json:"taxRate"`
	TaxAmount decimal.Decimal `json:"taxAmount"`

	StockHistoryID string `json:"stockHistoryId,omitempty"`
}

// PaymentRecord is one entry of the embedded payment history.
type PaymentRecord struct {
	PaymentID string          `json:"paymentId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Date      time.Time       `json:"date"`
}

// PaymentState is the invoice's embedded payment sub-document.
type PaymentState struct {
	Status        string          `json:"status"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
	NextDueDate   *time.Time      `json:"nextDueDate,omitempty"`
	History       []PaymentRecord `json:"paymentHistory"`
}

// ReturnedItemSummary is the condensed item list inside a returns-history
// entry.
type ReturnedItemSummary struct {
	ProductName string         `json:"productName"`
	Quantity    units.Quantity `json:"quantity"`
}

// ReturnHistoryEntry records one return event against the invoice.
type ReturnHistoryEntry struct {
	ReturnID     string                `json:"returnId"`
	ReturnNumber string                `json:"returnNumber"`
	ReturnDate   time.Time             `json:"returnDate"`
	ReturnType   string                `json:"returnType"`
	ReturnValue  decimal.Decimal       `json:"returnValue"`
	Items        []ReturnedItemSummary `json:"items"`
}

// ReturnState is the invoice's embedded return sub-document.
type ReturnState struct {
	IsReturned            bool                 `json:"isReturned"`
	ReturnDate            *time.Time           `json:"returnDate,omitempty"`
	TotalRefundAmount     decimal.Decimal      `json:"totalRefundAmount"`
	TotalReturnCredit     decimal.Decimal      `json:"totalReturnCredit"`
	UsedReturnCredit      decimal.Decimal      `json:"usedReturnCredit"`
	AvailableReturnCredit decimal.Decimal      `json:"availableReturnCredit"`
	ReturnNotes           string               `json:"returnNotes"`
	History               []ReturnHistoryEntry `json:"returnsHistory"`
}

// Invoice is one sale event. InvoiceValue and TotalBeforeDiscount are
// derived at creation; Discount is a separate ledger and never changes
// FinalAmount.
type Invoice struct {
	ID            string
	InvoiceNumber string
	InvoiceType   string
	InvoiceDate   time.Time
	SalesChannel  string

	CustomerID      string
	CustomerDetails CustomerSnapshot

	Items []InvoiceItem

	Subtotal decimal.Decimal
	Discount decimal.Decimal

	CGST     decimal.Decimal
	SGST     decimal.Decimal
	IGST     decimal.Decimal
	TotalTax decimal.Decimal

	InvoiceValue        decimal.Decimal // GST: subtotal+tax; NON_GST: subtotal
	TotalBeforeDiscount decimal.Decimal // subtotal + tax
	TotalAmount         decimal.Decimal
	RoundOffAmount      decimal.Decimal
	FinalAmount         decimal.Decimal

	Payment PaymentState
	Return  ReturnState

	Status string
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}
