package billing

import (
	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

// PaymentStatusFor derives the payment status from the money columns.
// Discounts count towards settlement, so a discounted invoice flips to PAID
// once totalPaid covers finalAmount minus discount.
func PaymentStatusFor(totalPaid, finalAmount, discount decimal.Decimal) string {
	if totalPaid.GreaterThanOrEqual(finalAmount.Sub(discount)) {
		return entity.PaymentStatusPaid
	}
	if totalPaid.GreaterThan(decimal.Zero) {
		return entity.PaymentStatusPartial
	}
	return entity.PaymentStatusPending
}
