package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods.
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodUPI          = "UPI"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCard         = "CARD"
	PaymentMethodCheque       = "CHEQUE"
)

// Payment is one money-received event against an invoice. Records with a
// zero amount are never persisted (due-date-only updates skip creation).
type Payment struct {
	ID            string
	InvoiceID     string
	InvoiceNumber string
	CustomerID    string
	CustomerName  string

	Amount        decimal.Decimal
	Method        string
	PaymentDate   time.Time
	TransactionID string
	NextDueDate   *time.Time

	// Invoice pending amount right after this payment was applied.
	RemainingAmount decimal.Decimal

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
