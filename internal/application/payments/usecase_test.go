package payments

import (
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

type fakePaymentRepo struct {
	payments map[string]*entity.Payment
}

func (r *fakePaymentRepo) Create(p *entity.Payment) error {
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(id string) (*entity.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) List(filter repository.PaymentFilter) ([]*entity.Payment, int, error) {
	var out []*entity.Payment
	for _, p := range r.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakePaymentRepo) ListByCustomer(customerID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Delete(id string) error {
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) DeleteByInvoice(invoiceID string) error {
	for id, p := range r.payments {
		if p.InvoiceID == invoiceID {
			delete(r.payments, id)
		}
	}
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByNumber(string) (*entity.Invoice, error) { return nil, nil }
func (r *fakeInvoiceRepo) List(repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	return nil, 0, nil
}
func (r *fakeInvoiceRepo) ListByCustomer(string) ([]*entity.Invoice, error) { return nil, nil }

func (r *fakeInvoiceRepo) ListPendingWithDueDate() ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.Payment.NextDueDate == nil {
			continue
		}
		if inv.Payment.Status == entity.PaymentStatusPending || inv.Payment.Status == entity.PaymentStatusPartial {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Payment.NextDueDate.Before(*out[j].Payment.NextDueDate)
	})
	return out, nil
}

func (r *fakeInvoiceRepo) ListMissingDerivedValues() ([]*entity.Invoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Delete(id string) error { return nil }
func (r *fakeInvoiceRepo) LastNumberWithPrefix(string) (string, error) {
	return "", nil
}
func (r *fakeInvoiceRepo) SumDiscountByCustomer(string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByPhone(string) (*entity.Customer, error) { return nil, nil }
func (r *fakeCustomerRepo) List(repository.CustomerFilter) ([]*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(id string) error { return nil }

type fixture struct {
	payments  *fakePaymentRepo
	invoices  *fakeInvoiceRepo
	customers *fakeCustomerRepo
	uc        *UseCase
}

func newFixture() *fixture {
	payments := &fakePaymentRepo{payments: map[string]*entity.Payment{}}
	invoices := &fakeInvoiceRepo{invoices: map[string]*entity.Invoice{}}
	customers := &fakeCustomerRepo{customers: map[string]*entity.Customer{}}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return &fixture{
		payments:  payments,
		invoices:  invoices,
		customers: customers,
		uc:        New(payments, invoices, customers, log),
	}
}

func TestDeletePaymentReversal(t *testing.T) {
	f := newFixture()

	customer := &entity.Customer{
		ID:                 uuid.New().String(),
		Name:               "Asha Traders",
		TotalPaidAmount:    decimal.NewFromInt(400),
		OutstandingBalance: decimal.NewFromInt(600),
	}
	require.NoError(t, f.customers.Create(customer))

	payment := &entity.Payment{
		ID:         uuid.New().String(),
		InvoiceID:  "inv-1",
		CustomerID: customer.ID,
		Amount:     decimal.NewFromInt(400),
		Method:     entity.PaymentMethodCash,
	}
	require.NoError(t, f.payments.Create(payment))

	invoice := &entity.Invoice{
		ID:          "inv-1",
		CustomerID:  customer.ID,
		FinalAmount: decimal.NewFromInt(1000),
		Payment: entity.PaymentState{
			Status:        entity.PaymentStatusPartial,
			TotalPaid:     decimal.NewFromInt(400),
			PendingAmount: decimal.NewFromInt(600),
			History: []entity.PaymentRecord{{
				PaymentID: payment.ID,
				Amount:    payment.Amount,
				Method:    payment.Method,
			}},
		},
	}
	require.NoError(t, f.invoices.Create(invoice))

	require.NoError(t, f.uc.Delete(payment.ID))

	inv, _ := f.invoices.GetByID("inv-1")
	assert.True(t, inv.Payment.TotalPaid.IsZero())
	assert.True(t, inv.Payment.PendingAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, entity.PaymentStatusPending, inv.Payment.Status)
	assert.Empty(t, inv.Payment.History)

	cust, _ := f.customers.GetByID(customer.ID)
	assert.True(t, cust.TotalPaidAmount.IsZero())
	assert.True(t, cust.OutstandingBalance.Equal(decimal.NewFromInt(1000)))

	_, err := f.uc.Get(payment.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A second delete reports the payment as gone.
	assert.ErrorIs(t, f.uc.Delete(payment.ID), domain.ErrNotFound)
}

func TestDeletePaymentKeepsPartialStatus(t *testing.T) {
	f := newFixture()

	first := &entity.Payment{ID: "p1", InvoiceID: "inv-1", Amount: decimal.NewFromInt(300)}
	second := &entity.Payment{ID: "p2", InvoiceID: "inv-1", Amount: decimal.NewFromInt(200)}
	require.NoError(t, f.payments.Create(first))
	require.NoError(t, f.payments.Create(second))

	invoice := &entity.Invoice{
		ID:          "inv-1",
		FinalAmount: decimal.NewFromInt(1000),
		Payment: entity.PaymentState{
			Status:        entity.PaymentStatusPartial,
			TotalPaid:     decimal.NewFromInt(500),
			PendingAmount: decimal.NewFromInt(500),
			History: []entity.PaymentRecord{
				{PaymentID: "p1", Amount: first.Amount},
				{PaymentID: "p2", Amount: second.Amount},
			},
		},
	}
	require.NoError(t, f.invoices.Create(invoice))

	require.NoError(t, f.uc.Delete("p2"))

	inv, _ := f.invoices.GetByID("inv-1")
	assert.True(t, inv.Payment.TotalPaid.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, entity.PaymentStatusPartial, inv.Payment.Status)
	require.Len(t, inv.Payment.History, 1)
	assert.Equal(t, "p1", inv.Payment.History[0].PaymentID)
}

func TestPendingPartition(t *testing.T) {
	f := newFixture()

	overdueDate := time.Now().Add(-72 * time.Hour)
	upcomingDate := time.Now().Add(72 * time.Hour)
	require.NoError(t, f.invoices.Create(&entity.Invoice{
		ID: "inv-overdue",
		Payment: entity.PaymentState{
			Status:        entity.PaymentStatusPending,
			NextDueDate:   &overdueDate,
			PendingAmount: decimal.NewFromInt(500),
		},
	}))
	require.NoError(t, f.invoices.Create(&entity.Invoice{
		ID: "inv-upcoming",
		Payment: entity.PaymentState{
			Status:        entity.PaymentStatusPartial,
			NextDueDate:   &upcomingDate,
			PendingAmount: decimal.NewFromInt(300),
		},
	}))
	// Settled invoices never show up even with a stale due date.
	require.NoError(t, f.invoices.Create(&entity.Invoice{
		ID: "inv-paid",
		Payment: entity.PaymentState{
			Status:      entity.PaymentStatusPaid,
			NextDueDate: &overdueDate,
		},
	}))

	pending, err := f.uc.Pending()
	require.NoError(t, err)
	require.Len(t, pending.Overdue, 1)
	require.Len(t, pending.Upcoming, 1)
	assert.Equal(t, "inv-overdue", pending.Overdue[0].Invoice.ID)
	assert.Equal(t, 3, pending.Overdue[0].DaysOverdue)
	assert.Equal(t, "inv-upcoming", pending.Upcoming[0].Invoice.ID)
}

func TestHistoryByCustomer(t *testing.T) {
	f := newFixture()
	customer := &entity.Customer{ID: "c1", Name: "Asha Traders"}
	require.NoError(t, f.customers.Create(customer))

	require.NoError(t, f.payments.Create(&entity.Payment{ID: "p1", CustomerID: "c1", Amount: decimal.NewFromInt(100)}))
	require.NoError(t, f.payments.Create(&entity.Payment{ID: "p2", CustomerID: "c1", Amount: decimal.NewFromInt(250)}))
	require.NoError(t, f.payments.Create(&entity.Payment{ID: "p3", CustomerID: "other", Amount: decimal.NewFromInt(999)}))

	history, err := f.uc.HistoryByCustomer("c1")
	require.NoError(t, err)
	assert.Len(t, history.Payments, 2)
	assert.True(t, history.TotalAmount.Equal(decimal.NewFromInt(350)))

	_, err = f.uc.HistoryByCustomer("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
