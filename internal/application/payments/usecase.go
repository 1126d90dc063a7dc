package payments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

// UseCase reads the payment ledger and reverses individual payments.
type UseCase struct {
	payments  repository.PaymentRepository
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	log       *logger.Logger
}

// New builds the use case.
func New(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	customers repository.CustomerRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{payments: payments, invoices: invoices, customers: customers, log: log}
}

// List returns payments matching the filter plus the total count.
func (uc *UseCase) List(filter repository.PaymentFilter) ([]*entity.Payment, int, error) {
	return uc.payments.List(filter)
}

// Get returns one payment.
func (uc *UseCase) Get(id string) (*entity.Payment, error) {
	payment, err := uc.payments.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load payment %s: %w", id, err)
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}

// DueInvoice is one unsettled invoice with its due-date context.
type DueInvoice struct {
	Invoice     *entity.Invoice
	NextDueDate time.Time
	DaysOverdue int
}

// PendingPayments partitions unsettled invoices that carry a due date into
// overdue and upcoming, both ordered by due date.
type PendingPayments struct {
	Overdue  []DueInvoice
	Upcoming []DueInvoice
}

// Pending lists invoices awaiting money, split around today.
func (uc *UseCase) Pending() (*PendingPayments, error) {
	invoices, err := uc.invoices.ListPendingWithDueDate()
	if err != nil {
		return nil, fmt.Errorf("list pending invoices: %w", err)
	}
	now := time.Now()
	out := &PendingPayments{}
	for _, invoice := range invoices {
		due := *invoice.Payment.NextDueDate
		entry := DueInvoice{Invoice: invoice, NextDueDate: due}
		if due.Before(now) {
			entry.DaysOverdue = int(now.Sub(due).Hours() / 24)
			out.Overdue = append(out.Overdue, entry)
		} else {
			out.Upcoming = append(out.Upcoming, entry)
		}
	}
	return out, nil
}

// CustomerHistory is one customer's payment trail with totals.
type CustomerHistory struct {
	Payments    []*entity.Payment
	TotalAmount decimal.Decimal
}

// HistoryByCustomer returns every payment a customer has made.
func (uc *UseCase) HistoryByCustomer(customerID string) (*CustomerHistory, error) {
	customer, err := uc.customers.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", customerID, err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.payments.ListByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments for customer %s: %w", customerID, err)
	}
	total := decimal.Zero
	for _, payment := range list {
		total = total.Add(payment.Amount)
	}
	return &CustomerHistory{Payments: list, TotalAmount: total}, nil
}

// Delete reverses one payment: the invoice's paid/pending columns and
// embedded history give the money back, and the customer aggregates follow.
func (uc *UseCase) Delete(id string) error {
	payment, err := uc.payments.GetByID(id)
	if err != nil {
		return fmt.Errorf("load payment %s: %w", id, err)
	}
	if payment == nil {
		return domain.ErrNotFound
	}

	invoice, err := uc.invoices.GetByID(payment.InvoiceID)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", payment.InvoiceID, err)
	}
	if invoice != nil {
		invoice.Payment.TotalPaid = floorZero(invoice.Payment.TotalPaid.Sub(payment.Amount))
		invoice.Payment.PendingAmount = invoice.Payment.PendingAmount.Add(payment.Amount)
		if invoice.Payment.TotalPaid.IsZero() {
			invoice.Payment.Status = entity.PaymentStatusPending
		} else {
			invoice.Payment.Status = entity.PaymentStatusPartial
		}
		history := invoice.Payment.History[:0]
		for _, record := range invoice.Payment.History {
			if record.PaymentID != payment.ID {
				history = append(history, record)
			}
		}
		invoice.Payment.History = history
		if err := uc.invoices.Update(invoice); err != nil {
			return fmt.Errorf("update invoice %s for payment %s: %w", invoice.ID, id, err)
		}
	} else {
		uc.log.Warn().Str("payment_id", id).Str("invoice_id", payment.InvoiceID).
			Msg("invoice gone while deleting payment, reversing customer aggregates only")
	}

	customer, err := uc.customers.GetByID(payment.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", payment.CustomerID, err)
	}
	if customer != nil {
		customer.TotalPaidAmount = floorZero(customer.TotalPaidAmount.Sub(payment.Amount))
		customer.OutstandingBalance = customer.OutstandingBalance.Add(payment.Amount)
		if err := uc.customers.Update(customer); err != nil {
			return fmt.Errorf("update customer %s for payment %s: %w", customer.ID, id, err)
		}
	}

	if err := uc.payments.Delete(id); err != nil {
		return fmt.Errorf("delete payment %s: %w", id, err)
	}
	return nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return d
}
