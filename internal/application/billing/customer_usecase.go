package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

// CustomerUseCase manages the customer book. Deleting is refused while
// invoices reference the customer; the running aggregates stay with the
// record.
type CustomerUseCase struct {
	customers repository.CustomerRepository
	invoices  repository.InvoiceRepository
	returns   repository.ReturnRepository
	log       *logger.Logger
}

// NewCustomerUseCase builds the use case.
func NewCustomerUseCase(
	customers repository.CustomerRepository,
	invoices repository.InvoiceRepository,
	returns repository.ReturnRepository,
	log *logger.Logger,
) *CustomerUseCase {
	return &CustomerUseCase{customers: customers, invoices: invoices, returns: returns, log: log}
}

// CustomerInput is the create/update form.
type CustomerInput struct {
	Name      string
	Phone     string
	Email     string
	Address   string
	GSTNumber string
	Notes     string
}

// Create registers a customer. Phone numbers are unique across the book.
func (uc *CustomerUseCase) Create(in CustomerInput) (*entity.Customer, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", domain.ErrInvalidInput)
	}
	if in.Phone != "" {
		existing, err := uc.customers.GetByPhone(in.Phone)
		if err != nil {
			return nil, fmt.Errorf("check phone %s: %w", in.Phone, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: customer with phone %s already exists", domain.ErrDuplicate, in.Phone)
		}
	}
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		GSTNumber: in.GSTNumber,
		Notes:     in.Notes,
		IsActive:  true,
	}
	if err := uc.customers.Create(customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// CustomerView is a customer plus values derived on read.
type CustomerView struct {
	Customer *entity.Customer
	// Sum of discounts granted across the customer's invoices.
	TotalDiscountGiven decimal.Decimal
	// Unconsumed return credit across open CREDIT returns.
	AvailableCredit decimal.Decimal
}

// List returns customers with their total discount, matching the filter.
func (uc *CustomerUseCase) List(filter repository.CustomerFilter) ([]*CustomerView, error) {
	customers, err := uc.customers.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	views := make([]*CustomerView, 0, len(customers))
	for _, customer := range customers {
		discount, err := uc.invoices.SumDiscountByCustomer(customer.ID)
		if err != nil {
			return nil, fmt.Errorf("sum discounts for customer %s: %w", customer.ID, err)
		}
		views = append(views, &CustomerView{Customer: customer, TotalDiscountGiven: discount})
	}
	return views, nil
}

// Get returns one customer with derived discount and credit values.
func (uc *CustomerUseCase) Get(id string) (*CustomerView, error) {
	customer, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", id, err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	discount, err := uc.invoices.SumDiscountByCustomer(id)
	if err != nil {
		return nil, fmt.Errorf("sum discounts for customer %s: %w", id, err)
	}
	credit := decimal.Zero
	credits, err := uc.returns.ListOpenCreditsByCustomer(id)
	if err != nil {
		return nil, fmt.Errorf("list credits for customer %s: %w", id, err)
	}
	for _, ret := range credits {
		credit = credit.Add(ret.CreditBalance)
	}
	return &CustomerView{Customer: customer, TotalDiscountGiven: discount, AvailableCredit: credit}, nil
}

// Update edits contact data. Phone uniqueness is re-checked when it changes.
func (uc *CustomerUseCase) Update(id string, in CustomerInput) (*entity.Customer, error) {
	customer, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", id, err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", domain.ErrInvalidInput)
	}
	if in.Phone != "" && in.Phone != customer.Phone {
		existing, err := uc.customers.GetByPhone(in.Phone)
		if err != nil {
			return nil, fmt.Errorf("check phone %s: %w", in.Phone, err)
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: customer with phone %s already exists", domain.ErrDuplicate, in.Phone)
		}
	}
	customer.Name = in.Name
	customer.Phone = in.Phone
	customer.Email = in.Email
	customer.Address = in.Address
	customer.GSTNumber = in.GSTNumber
	customer.Notes = in.Notes
	if err := uc.customers.Update(customer); err != nil {
		return nil, fmt.Errorf("update customer %s: %w", id, err)
	}
	return customer, nil
}

// Delete removes a customer with no invoices. A customer that has billed
// history is kept for the audit trail.
func (uc *CustomerUseCase) Delete(id string) error {
	customer, err := uc.customers.GetByID(id)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", id, err)
	}
	if customer == nil {
		return domain.ErrNotFound
	}
	invoices, err := uc.invoices.ListByCustomer(id)
	if err != nil {
		return fmt.Errorf("list invoices for customer %s: %w", id, err)
	}
	if len(invoices) > 0 {
		return fmt.Errorf("%w: customer has %d invoices and cannot be deleted", domain.ErrConflict, len(invoices))
	}
	return uc.customers.Delete(id)
}

// CustomerStats summarizes one customer's purchase behavior.
type CustomerStats struct {
	TotalInvoices       int
	TotalPurchaseAmount decimal.Decimal
	TotalPaidAmount     decimal.Decimal
	OutstandingBalance  decimal.Decimal
	AverageInvoiceValue decimal.Decimal
	LastPurchaseDate    *time.Time
}

// Stats derives summary figures from the customer's invoices.
func (uc *CustomerUseCase) Stats(id string) (*CustomerStats, error) {
	customer, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", id, err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	stats := &CustomerStats{
		TotalInvoices:       customer.TotalInvoices,
		TotalPurchaseAmount: customer.TotalPurchaseAmount,
		TotalPaidAmount:     customer.TotalPaidAmount,
		OutstandingBalance:  customer.OutstandingBalance,
		LastPurchaseDate:    customer.LastPurchaseDate,
	}
	if customer.TotalInvoices > 0 {
		stats.AverageInvoiceValue = customer.TotalPurchaseAmount.
			Div(decimal.NewFromInt(int64(customer.TotalInvoices))).Round(2)
	}
	return stats, nil
}

// Invoices lists a customer's invoices.
func (uc *CustomerUseCase) Invoices(id string) ([]*entity.Invoice, error) {
	customer, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", id, err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return uc.invoices.ListByCustomer(id)
}
