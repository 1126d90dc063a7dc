package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
)

// numberSource is any store that can report the highest document number for a
// month prefix.
type numberSource interface {
	LastNumberWithPrefix(prefix string) (string, error)
}

// nextNumber builds "{prefix}{YYYY}{MM}-{seq}" with a four-digit sequence.
// The sequence restarts every month and survives deleted documents: it is
// derived from the highest surviving number, so gaps never cause reuse below
// the maximum.
func nextNumber(src numberSource, prefix string, now time.Time) (string, error) {
	monthPrefix := fmt.Sprintf("%s%d%02d-", prefix, now.Year(), int(now.Month()))
	last, err := src.LastNumberWithPrefix(monthPrefix)
	if err != nil {
		return "", fmt.Errorf("load last number for %s: %w", monthPrefix, err)
	}
	seq := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", monthPrefix, seq), nil
}

// NextInvoiceNumber issues the next GST-YYYYMM-NNNN or INV-YYYYMM-NNNN.
func NextInvoiceNumber(src numberSource, invoiceType string, now time.Time) (string, error) {
	prefix := "INV-"
	if invoiceType == entity.InvoiceTypeGST {
		prefix = "GST-"
	}
	return nextNumber(src, prefix, now)
}

// NextReturnNumber issues the next RET-YYYYMM-NNNN.
func NextReturnNumber(src numberSource, now time.Time) (string, error) {
	return nextNumber(src, "RET-", now)
}
