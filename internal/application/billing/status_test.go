package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

func TestPaymentStatusFor(t *testing.T) {
	d := decimal.NewFromInt

	tests := []struct {
		name      string
		totalPaid int64
		final     int64
		discount  int64
		want      string
	}{
		{"unpaid", 0, 1000, 0, entity.PaymentStatusPending},
		{"partial", 400, 1000, 0, entity.PaymentStatusPartial},
		{"paid exactly", 1000, 1000, 0, entity.PaymentStatusPaid},
		{"overpaid", 1100, 1000, 0, entity.PaymentStatusPaid},
		{"discount settles the remainder", 900, 1000, 100, entity.PaymentStatusPaid},
		{"discount alone settles", 0, 100, 100, entity.PaymentStatusPaid},
		{"discount not enough", 0, 1000, 100, entity.PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentStatusFor(d(tt.totalPaid), d(tt.final), d(tt.discount))
			assert.Equal(t, tt.want, got)
		})
	}
}
