package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

func TestNextInvoiceNumberFirstOfMonth(t *testing.T) {
	f := newFixture()
	now := date(2026, time.January, 15)

	num, err := NextInvoiceNumber(f.invoices, entity.InvoiceTypeGST, now)
	require.NoError(t, err)
	assert.Equal(t, "GST-202601-0001", num)

	num, err = NextInvoiceNumber(f.invoices, entity.InvoiceTypeNonGST, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-202601-0001", num)
}

func TestNextInvoiceNumberSurvivesGaps(t *testing.T) {
	f := newFixture()
	now := date(2026, time.January, 15)

	for _, n := range []string{"GST-202601-0001", "GST-202601-0007"} {
		_ = f.invoices.Create(&entity.Invoice{ID: uuid.New().String(), InvoiceNumber: n})
	}

	// Deleted documents leave gaps; the sequence continues past the maximum.
	num, err := NextInvoiceNumber(f.invoices, entity.InvoiceTypeGST, now)
	require.NoError(t, err)
	assert.Equal(t, "GST-202601-0008", num)
}

func TestNextInvoiceNumberRestartsMonthly(t *testing.T) {
	f := newFixture()
	_ = f.invoices.Create(&entity.Invoice{ID: uuid.New().String(), InvoiceNumber: "GST-202601-0042"})

	num, err := NextInvoiceNumber(f.invoices, entity.InvoiceTypeGST, date(2026, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, "GST-202602-0001", num)
}

func TestNextReturnNumber(t *testing.T) {
	f := newFixture()
	_ = f.returns.Create(&entity.Return{ID: uuid.New().String(), ReturnNumber: "RET-202601-0003"})

	num, err := NextReturnNumber(f.returns, date(2026, time.January, 20))
	require.NoError(t, err)
	assert.Equal(t, "RET-202601-0004", num)
}
