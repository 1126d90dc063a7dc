package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

func TestCreateInvoice(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(400))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items: []entity.InvoiceItem{
			f.item(product, 2, 0),
			{ProductName: "Delivery charge", IsCustom: true, ItemTotal: decimal.NewFromInt(200)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-"+time.Now().Format("200601")+"-0001", invoice.InvoiceNumber)
	assert.True(t, invoice.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, invoice.FinalAmount.Equal(decimal.NewFromInt(1000)))
	// NON_GST invoice value excludes tax.
	assert.True(t, invoice.InvoiceValue.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, entity.PaymentStatusPending, invoice.Payment.Status)
	assert.True(t, invoice.Payment.PendingAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Asha Traders", invoice.CustomerDetails.Name)

	// Only the stocked line touched the ledger.
	entries := f.history.byInvoice(invoice.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.ActionSale, entries[0].Action)

	stored, _ := f.products.GetByID(product.ID)
	assert.Equal(t, units.Quantity{Boxes: 2}, stored.Sales)

	updated, _ := f.customers.GetByID(customer.ID)
	assert.True(t, updated.TotalPurchaseAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, updated.OutstandingBalance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, updated.TotalInvoices)
	require.NotNil(t, updated.LastPurchaseDate)
}

func TestCreateInvoiceWithInitialPayment(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType:   entity.InvoiceTypeGST,
		CustomerID:    customer.ID,
		Items:         []entity.InvoiceItem{f.item(product, 2, 0)},
		CGST:          decimal.NewFromInt(90),
		SGST:          decimal.NewFromInt(90),
		PaidAmount:    decimal.NewFromInt(500),
		PaymentMethod: entity.PaymentMethodUPI,
	})
	require.NoError(t, err)

	// GST: 1000 + 180 tax.
	assert.True(t, invoice.TotalBeforeDiscount.Equal(decimal.NewFromInt(1180)))
	assert.True(t, invoice.InvoiceValue.Equal(decimal.NewFromInt(1180)))
	assert.Equal(t, entity.PaymentStatusPartial, invoice.Payment.Status)
	assert.True(t, invoice.Payment.PendingAmount.Equal(decimal.NewFromInt(680)))
	require.Len(t, invoice.Payment.History, 1)
	assert.Equal(t, entity.PaymentMethodUPI, invoice.Payment.History[0].Method)

	payments, _, _ := f.payments.List(repository.PaymentFilter{})
	require.Len(t, payments, 1)
	assert.True(t, payments[0].RemainingAmount.Equal(decimal.NewFromInt(680)))

	updated, _ := f.customers.GetByID(customer.ID)
	assert.True(t, updated.TotalPaidAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, updated.OutstandingBalance.Equal(decimal.NewFromInt(680)))
}

func TestCreateInvoiceCustomNumber(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(400))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType:         entity.InvoiceTypeNonGST,
		CustomInvoiceNumber: "INV-LEGACY-99",
		CustomerID:          customer.ID,
		Items:               []entity.InvoiceItem{f.item(product, 1, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-LEGACY-99", invoice.InvoiceNumber)

	_, err = f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType:         entity.InvoiceTypeNonGST,
		CustomInvoiceNumber: "INV-LEGACY-99",
		CustomerID:          customer.ID,
		Items:               []entity.InvoiceItem{f.item(product, 1, 0)},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")

	_, err := f.invoiceUC.Create(CreateInvoiceInput{InvoiceType: entity.InvoiceTypeGST, CustomerID: customer.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeGST,
		CustomerID:  "missing",
		Items:       []entity.InvoiceItem{{ProductName: "x", ItemTotal: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoiceMissingProductBilledWithoutStock(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items: []entity.InvoiceItem{{
			ProductID:   "vanished",
			ProductName: "Old stock",
			Quantity:    units.Quantity{Boxes: 1},
			ItemTotal:   decimal.NewFromInt(300),
		}},
	})
	require.NoError(t, err)
	assert.Empty(t, f.history.byInvoice(invoice.ID))
}

func TestUpdatePaymentFlow(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 2, 0)},
	})
	require.NoError(t, err)

	due := date(2026, time.March, 1)
	invoice, err = f.invoiceUC.UpdatePayment(invoice.ID, PaymentUpdateInput{
		Amount:      decimal.NewFromInt(400),
		Method:      entity.PaymentMethodCash,
		NextDueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, invoice.Payment.Status)
	assert.True(t, invoice.Payment.PendingAmount.Equal(decimal.NewFromInt(600)))
	require.NotNil(t, invoice.Payment.NextDueDate)

	invoice, err = f.invoiceUC.UpdatePayment(invoice.ID, PaymentUpdateInput{
		Amount: decimal.NewFromInt(600),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, invoice.Payment.Status)
	assert.True(t, invoice.Payment.PendingAmount.IsZero())
	// Settlement clears the reminder date.
	assert.Nil(t, invoice.Payment.NextDueDate)
	require.Len(t, invoice.Payment.History, 2)

	updated, _ := f.customers.GetByID(customer.ID)
	assert.True(t, updated.TotalPaidAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, updated.OutstandingBalance.IsZero())
}

func TestUpdatePaymentDiscountOnly(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 2, 0)},
		PaidAmount:  decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	invoice, err = f.invoiceUC.UpdatePayment(invoice.ID, PaymentUpdateInput{
		Discount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	// The discount settles the invoice without changing finalAmount.
	assert.True(t, invoice.FinalAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, entity.PaymentStatusPaid, invoice.Payment.Status)
	assert.True(t, invoice.Payment.PendingAmount.IsZero())

	// No Payment record for a discount-only update.
	payments, _, _ := f.payments.List(repository.PaymentFilter{})
	assert.Len(t, payments, 1)
}

func TestUpdatePaymentDueDateOnly(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 1, 0)},
	})
	require.NoError(t, err)

	due := date(2026, time.April, 10)
	invoice, err = f.invoiceUC.UpdatePayment(invoice.ID, PaymentUpdateInput{NextDueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, invoice.Payment.NextDueDate)
	assert.True(t, invoice.Payment.NextDueDate.Equal(due))

	payments, _, _ := f.payments.List(repository.PaymentFilter{})
	assert.Empty(t, payments)
}

func TestUpdateInvoiceReappliesStock(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(400))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 3, 0)},
	})
	require.NoError(t, err)

	updated, err := f.invoiceUC.Update(invoice.ID, UpdateInvoiceInput{
		Items: []entity.InvoiceItem{f.item(product, 1, 0)},
	})
	require.NoError(t, err)
	assert.True(t, updated.FinalAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, updated.Payment.PendingAmount.Equal(decimal.NewFromInt(400)))

	// Sales counter reflects only the new line and the invoice has exactly
	// one fresh SALE entry.
	stored, _ := f.products.GetByID(product.ID)
	assert.Equal(t, units.Quantity{Boxes: 1}, stored.Sales)
	entries := f.history.byInvoice(invoice.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.ActionSale, entries[0].Action)

	// Edits deliberately leave customer aggregates alone.
	cust, _ := f.customers.GetByID(customer.ID)
	assert.True(t, cust.TotalPurchaseAmount.Equal(decimal.NewFromInt(1200)))
}

func TestDeleteInvoiceReversesEverything(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 10, decimal.NewFromInt(500))

	invoice, err := f.invoiceUC.Create(CreateInvoiceInput{
		InvoiceType: entity.InvoiceTypeNonGST,
		CustomerID:  customer.ID,
		Items:       []entity.InvoiceItem{f.item(product, 2, 0)},
		PaidAmount:  decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	require.NoError(t, f.invoiceUC.Delete(invoice.ID))

	stored, _ := f.products.GetByID(product.ID)
	assert.Equal(t, units.Quantity{}, stored.Sales)
	assert.Empty(t, f.history.byInvoice(invoice.ID))

	cust, _ := f.customers.GetByID(customer.ID)
	assert.True(t, cust.TotalPurchaseAmount.IsZero())
	assert.True(t, cust.TotalPaidAmount.IsZero())
	assert.True(t, cust.OutstandingBalance.IsZero())
	assert.Equal(t, 0, cust.TotalInvoices)

	payments, _, _ := f.payments.List(repository.PaymentFilter{})
	assert.Empty(t, payments)

	// Deleting again reports the invoice as gone.
	assert.ErrorIs(t, f.invoiceUC.Delete(invoice.ID), domain.ErrNotFound)
}

func TestMigrateInvoiceValues(t *testing.T) {
	f := newFixture()
	_ = f.invoices.Create(&entity.Invoice{
		ID:            "legacy",
		InvoiceNumber: "GST-202501-0001",
		InvoiceType:   entity.InvoiceTypeGST,
		Subtotal:      decimal.NewFromInt(1000),
		TotalTax:      decimal.NewFromInt(180),
	})

	n, err := f.invoiceUC.MigrateInvoiceValues()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	migrated, _ := f.invoices.GetByID("legacy")
	assert.True(t, migrated.TotalBeforeDiscount.Equal(decimal.NewFromInt(1180)))
	assert.True(t, migrated.InvoiceValue.Equal(decimal.NewFromInt(1180)))
}

func TestRecalculateCustomerAggregates(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("Asha Traders", "9876543210")
	product := f.seedProduct("Floor Glossy 2×2", 4, 20, decimal.NewFromInt(500))

	for i := 0; i < 3; i++ {
		_, err := f.invoiceUC.Create(CreateInvoiceInput{
			InvoiceType: entity.InvoiceTypeNonGST,
			CustomerID:  customer.ID,
			Items:       []entity.InvoiceItem{f.item(product, 1, 0)},
		})
		require.NoError(t, err)
	}

	// Drift the aggregates, then rebuild from the invoices.
	drifted, _ := f.customers.GetByID(customer.ID)
	drifted.TotalPurchaseAmount = decimal.NewFromInt(9999)
	_ = f.customers.Update(drifted)

	rebuilt, err := f.invoiceUC.RecalculateCustomerAggregates(customer.ID)
	require.NoError(t, err)
	assert.True(t, rebuilt.TotalPurchaseAmount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 3, rebuilt.TotalInvoices)
	assert.True(t, rebuilt.OutstandingBalance.Equal(decimal.NewFromInt(1500)))
}
