package repository

import (
	"time"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

// ReturnFilter narrows return listings.
type ReturnFilter struct {
	Search     string // matches return number, invoice number, customer name or phone
	Status     string
	CustomerID string
	StartDate  *time.Time
	EndDate    *time.Time
}

// ReturnRepository is the persistence port for Return.
type ReturnRepository interface {
	Create(ret *entity.Return) error
	GetByID(id string) (*entity.Return, error)
	List(filter ReturnFilter) ([]*entity.Return, error)
	// ListOpenCreditsByCustomer returns CREDIT-type returns with a positive
	// credit balance, oldest first (FIFO consumption order).
	ListOpenCreditsByCustomer(customerID string) ([]*entity.Return, error)
	Update(ret *entity.Return) error
	// LastNumberWithPrefix returns the highest return number starting with
	// the given prefix, or empty when none exists.
	LastNumberWithPrefix(prefix string) (string, error)
}
