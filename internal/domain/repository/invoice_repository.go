package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Search          string // matches invoice number, customer name or phone
	InvoiceType     string
	PaymentStatuses []string
	SalesChannel    string
	CustomerID      string
	StartDate       *time.Time
	EndDate         *time.Time
	SortBy          string
	Order           string
	Limit           int
	Offset          int
}

// InvoiceRepository is the persistence port for Invoice.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	GetByNumber(number string) (*entity.Invoice, error)
	List(filter InvoiceFilter) ([]*entity.Invoice, int, error)
	ListByCustomer(customerID string) ([]*entity.Invoice, error)
	// ListPendingWithDueDate returns PENDING/PARTIAL invoices that carry a
	// next due date, ordered by that date ascending.
	ListPendingWithDueDate() ([]*entity.Invoice, error)
	// ListMissingDerivedValues returns invoices whose totalBeforeDiscount or
	// invoiceValue was never backfilled (migration support).
	ListMissingDerivedValues() ([]*entity.Invoice, error)
	Update(invoice *entity.Invoice) error
	Delete(id string) error
	// LastNumberWithPrefix returns the highest invoice number starting with
	// the given prefix, or empty when none exists.
	LastNumberWithPrefix(prefix string) (string, error)
	SumDiscountByCustomer(customerID string) (decimal.Decimal, error)
}
