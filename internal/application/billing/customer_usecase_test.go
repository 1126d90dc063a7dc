package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

func TestCreateCustomer(t *testing.T) {
	f := newFixture()

	customer, err := f.customerUC.Create(CustomerInput{Name: "Asha Traders", Phone: "9876543210"})
	require.NoError(t, err)
	assert.True(t, customer.IsActive)

	_, err = f.customerUC.Create(CustomerInput{Name: "Other", Phone: "9876543210"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.customerUC.Create(CustomerInput{Phone: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetCustomerWithDerivedValues(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 2, 0)},
	})
	require.NoError(t, err)
	_, err = f.invoiceUC.UpdatePayment(invoice.ID, PaymentUpdateInput{Discount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	_ = f.returns.Create(&entity.Return{
		ID:            "ret-1",
		ReturnNumber:  "RET-202601-0001",
		CustomerID:    customer.ID,
		ReturnType:    entity.ReturnTypeCredit,
		CreditBalance: decimal.NewFromInt(200),
	})

	view, err := f.customerUC.Get(customer.ID)
	require.NoError(t, err)
	assert.True(t, view.TotalDiscountGiven.Equal(decimal.NewFromInt(50)))
	assert.True(t, view.AvailableCredit.Equal(decimal.NewFromInt(200)))
}

func TestUpdateCustomerPhoneUniqueness(t *testing.T) {
	f := newFixture()
	a := f.seedCustomer("A", "111")
	f.seedCustomer("B", "222")

	_, err := f.customerUC.Update(a.ID, CustomerInput{Name: "A", Phone: "222"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	updated, err := f.customerUC.Update(a.ID, CustomerInput{Name: "A Renamed", Phone: "111"})
	require.NoError(t, err)
	assert.Equal(t, "A Renamed", updated.Name)
}

func TestDeleteCustomerBlockedByInvoices(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(400))

	_, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 1, 0)},
	})
	require.NoError(t, err)

	err = f.customerUC.Delete(customer.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	empty := f.seedCustomer("No History", "555")
	require.NoError(t, f.customerUC.Delete(empty.ID))
	_, err = f.customerUC.Get(empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerStats(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	for i := 0; i < 2; i++ {
		_, err := f.invoiceUC.Create(CreateInvoiceInput{
			InvoiceType: entity.InvoiceTypeNonGST,
			CustomerID:  customer.ID,
			Items:       []entity.InvoiceItem{f.item(product, 1, 0)},
		})
		require.NoError(t, err)
	}

	stats, err := f.customerUC.Stats(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalInvoices)
	assert.True(t, stats.TotalPurchaseAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, stats.AverageInvoiceValue.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, stats.LastPurchaseDate)
}

func TestListCustomers(t *testing.T) {
	f := newFixture()
	f.seedCustomer("B Traders", "222")
	f.seedCustomer("A Traders", "111")

	views, err := f.customerUC.List(repository.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "A Traders", views[0].Customer.Name)
}
