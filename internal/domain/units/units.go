// Package units implements dual-unit (boxes + loose pieces) quantity
// arithmetic for tile stock. All math happens in total-piece space; a
// Quantity is only ever a view of an integer piece count.
package units

import (
	"fmt"

	"github.com/tilemart/tilemart-api/internal/domain"
)

// Quantity is a dual-unit amount. Pieces is expected to stay below the
// product's piecesPerBox; stored data that violates this is tolerated by
// ToTotalPieces (see there).
type Quantity struct {
	Boxes  int `json:"boxes"`
	Pieces int `json:"pieces"`
}

// Available is a derived availability figure: normalized boxes/pieces plus
// the raw total-piece count it was computed from.
type Available struct {
	Boxes       int `json:"boxes"`
	Pieces      int `json:"pieces"`
	TotalPieces int `json:"totalPieces"`
}

// Check is the result of a guard helper.
type Check struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// PiecesPerBox returns the piece count per box for a nominal tile size.
// The "1×2" size is user-configurable between 5 and 6 (default 6). Unknown
// sizes return 0 and must be rejected by the caller.
func PiecesPerBox(size string, userChoice int) int {
	switch size {
	case "1×1":
		return 9
	case "1×1.5":
		return 6
	case "1×2":
		if userChoice == 5 || userChoice == 6 {
			return userChoice
		}
		return 6
	case "2×2":
		return 4
	case "2×4":
		return 2
	case "16×16":
		return 5
	default:
		return 0
	}
}

// ToTotalPieces converts a boxes/pieces pair to a total-piece count.
// Negative input is a validation error. A pieces value at or above
// piecesPerBox is folded into boxes instead of failing: stored counters can
// drift over the limit when two writes each stay under it individually, and
// reads must recover rather than reject.
func ToTotalPieces(boxes, pieces, piecesPerBox int) (int, error) {
	if boxes < 0 || pieces < 0 {
		return 0, fmt.Errorf("%w: cannot have negative boxes or pieces", domain.ErrInvalidInput)
	}
	if piecesPerBox < 1 {
		piecesPerBox = 1
	}
	if pieces >= piecesPerBox {
		extraBoxes := pieces / piecesPerBox
		remaining := pieces % piecesPerBox
		return (boxes+extraBoxes)*piecesPerBox + remaining, nil
	}
	return boxes*piecesPerBox + pieces, nil
}

// NormalizePieces converts a total-piece count back to a boxes/pieces pair
// with pieces < piecesPerBox.
func NormalizePieces(totalPieces, piecesPerBox int) (Quantity, error) {
	if totalPieces < 0 {
		return Quantity{}, fmt.Errorf("%w: cannot normalize negative pieces", domain.ErrInvalidInput)
	}
	if piecesPerBox < 1 {
		piecesPerBox = 1
	}
	return Quantity{
		Boxes:  totalPieces / piecesPerBox,
		Pieces: totalPieces % piecesPerBox,
	}, nil
}

// CalculateAvailable derives the sellable quantity from the four counters:
// stock − sales − damage + returns, computed in total-piece space and floored
// at zero before re-normalizing. The result is never stored.
func CalculateAvailable(stock, sales, damage, returns Quantity, piecesPerBox int) (Available, error) {
	if piecesPerBox < 1 {
		piecesPerBox = 1
	}
	stockTotal, err := ToTotalPieces(stock.Boxes, stock.Pieces, piecesPerBox)
	if err != nil {
		return Available{}, err
	}
	salesTotal, err := ToTotalPieces(sales.Boxes, sales.Pieces, piecesPerBox)
	if err != nil {
		return Available{}, err
	}
	damageTotal, err := ToTotalPieces(damage.Boxes, damage.Pieces, piecesPerBox)
	if err != nil {
		return Available{}, err
	}
	returnsTotal, err := ToTotalPieces(returns.Boxes, returns.Pieces, piecesPerBox)
	if err != nil {
		return Available{}, err
	}

	availableTotal := stockTotal - salesTotal - damageTotal + returnsTotal
	if availableTotal < 0 {
		return Available{}, nil
	}

	normalized, err := NormalizePieces(availableTotal, piecesPerBox)
	if err != nil {
		return Available{}, err
	}
	return Available{
		Boxes:       normalized.Boxes,
		Pieces:      normalized.Pieces,
		TotalPieces: availableTotal,
	}, nil
}

// ValidateQuantity guards a sale/damage/return amount against availability.
// Zero-quantity operations are rejected.
func ValidateQuantity(totalPiecesNeeded, availableTotalPieces int, operation string) Check {
	if operation == "" {
		operation = "sale"
	}
	if totalPiecesNeeded < 0 {
		return Check{IsValid: false, Message: fmt.Sprintf("Cannot %s negative quantity", operation)}
	}
	if totalPiecesNeeded == 0 {
		return Check{IsValid: false, Message: fmt.Sprintf("Must %s at least 1 piece", operation)}
	}
	if totalPiecesNeeded > availableTotalPieces {
		return Check{
			IsValid: false,
			Message: fmt.Sprintf("Insufficient quantity. Available: %d pc, Needed: %d pc", availableTotalPieces, totalPiecesNeeded),
		}
	}
	return Check{IsValid: true, Message: fmt.Sprintf("Valid for %s", operation)}
}

// ValidateBoxesPieces checks the strict input format: non-negative values
// with pieces below piecesPerBox. Unlike ToTotalPieces this does not
// tolerate overflow; it guards user input, not stored data.
func ValidateBoxesPieces(boxes, pieces, piecesPerBox int) Check {
	if boxes < 0 || pieces < 0 {
		return Check{IsValid: false, Message: "Boxes and pieces cannot be negative"}
	}
	if pieces >= piecesPerBox {
		return Check{IsValid: false, Message: fmt.Sprintf("Pieces must be less than %d", piecesPerBox)}
	}
	return Check{IsValid: true, Message: "Valid format"}
}

// AvailabilityStatus classifies an available total into a stock alert level.
func AvailabilityStatus(availableTotalPieces, piecesPerBox int) string {
	if availableTotalPieces == 0 {
		return "out_of_stock"
	}
	if piecesPerBox < 1 {
		piecesPerBox = 1
	}
	availableBoxes := availableTotalPieces / piecesPerBox
	switch {
	case availableBoxes >= 3:
		return "good"
	case availableBoxes >= 1:
		return "low"
	default:
		return "critical"
	}
}

// ParseDualUnitInput interprets a single-unit entry ("boxes" or "pieces")
// as a normalized quantity.
func ParseDualUnitInput(value int, inputType string, piecesPerBox int) (Available, error) {
	if value <= 0 {
		return Available{}, fmt.Errorf("%w: input value must be positive", domain.ErrInvalidInput)
	}
	var total int
	switch inputType {
	case "boxes":
		total = value * piecesPerBox
	case "pieces":
		total = value
	default:
		return Available{}, fmt.Errorf("%w: invalid input type %q", domain.ErrInvalidInput, inputType)
	}
	normalized, err := NormalizePieces(total, piecesPerBox)
	if err != nil {
		return Available{}, err
	}
	return Available{Boxes: normalized.Boxes, Pieces: normalized.Pieces, TotalPieces: total}, nil
}

// DamagePercentage returns damaged/stock as a percentage rounded to one
// decimal place.
func DamagePercentage(damageTotalPieces, stockTotalPieces int) float64 {
	if stockTotalPieces == 0 {
		return 0
	}
	pct := float64(damageTotalPieces) / float64(stockTotalPieces) * 100
	return roundOneDecimal(pct)
}

// ReturnRate returns returned/sold as a percentage rounded to one decimal
// place.
func ReturnRate(returnsTotalPieces, salesTotalPieces int) float64 {
	if salesTotalPieces == 0 {
		return 0
	}
	pct := float64(returnsTotalPieces) / float64(salesTotalPieces) * 100
	return roundOneDecimal(pct)
}

func roundOneDecimal(v float64) float64 {
	if v >= 0 {
		return float64(int(v*10+0.5)) / 10
	}
	return float64(int(v*10-0.5)) / 10
}

// FormatQty renders a quantity for ledger notes: "N bx, M pc" with a
// zero-valued dimension omitted, "0" when both are zero.
func FormatQty(boxes, pieces int) string {
	switch {
	case boxes > 0 && pieces > 0:
		return fmt.Sprintf("%d bx, %d pc", boxes, pieces)
	case boxes > 0:
		return fmt.Sprintf("%d bx", boxes)
	case pieces > 0:
		return fmt.Sprintf("%d pc", pieces)
	default:
		return "0"
	}
}
