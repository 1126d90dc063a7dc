package repository

import (
	"time"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

// PaymentFilter narrows payment listings. Listings only return rows with a
// positive amount (due-date extensions never persist a Payment).
type PaymentFilter struct {
	Search     string // matches invoice number
	CustomerID string
	InvoiceID  string
	Method     string
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	Order      string
	Limit      int
	Offset     int
}

// PaymentRepository is the persistence port for Payment.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	GetByID(id string) (*entity.Payment, error)
	List(filter PaymentFilter) ([]*entity.Payment, int, error)
	ListByCustomer(customerID string) ([]*entity.Payment, error)
	Delete(id string) error
	DeleteByInvoice(invoiceID string) error
}
