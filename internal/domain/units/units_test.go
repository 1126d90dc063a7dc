package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPiecesPerBox(t *testing.T) {
	assert.Equal(t, 9, PiecesPerBox("1×1", 0))
	assert.Equal(t, 6, PiecesPerBox("1×1.5", 0))
	assert.Equal(t, 4, PiecesPerBox("2×2", 0))
	assert.Equal(t, 2, PiecesPerBox("2×4", 0))
	assert.Equal(t, 5, PiecesPerBox("16×16", 0))

	// "1×2" is configurable between 5 and 6, default 6
	assert.Equal(t, 6, PiecesPerBox("1×2", 0))
	assert.Equal(t, 5, PiecesPerBox("1×2", 5))
	assert.Equal(t, 6, PiecesPerBox("1×2", 6))
	assert.Equal(t, 6, PiecesPerBox("1×2", 7))

	assert.Equal(t, 0, PiecesPerBox("3×3", 0))
}

func TestToTotalPieces(t *testing.T) {
	total, err := ToTotalPieces(2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 11, total)

	_, err = ToTotalPieces(-1, 0, 4)
	assert.Error(t, err)
	_, err = ToTotalPieces(0, -1, 4)
	assert.Error(t, err)
}

func TestToTotalPiecesTolerantOverflow(t *testing.T) {
	// pieces >= piecesPerBox folds into boxes instead of failing
	total, err := ToTotalPieces(2, 7, 4)
	require.NoError(t, err)
	assert.Equal(t, 15, total)

	equivalent, err := ToTotalPieces(2+7/4, 7%4, 4)
	require.NoError(t, err)
	assert.Equal(t, equivalent, total)
}

func TestNormalizeRoundTrip(t *testing.T) {
	for _, ppb := range []int{2, 4, 5, 6, 9} {
		for boxes := 0; boxes <= 12; boxes++ {
			for pieces := 0; pieces < ppb; pieces++ {
				total, err := ToTotalPieces(boxes, pieces, ppb)
				require.NoError(t, err)
				q, err := NormalizePieces(total, ppb)
				require.NoError(t, err)
				assert.Equal(t, Quantity{Boxes: boxes, Pieces: pieces}, q)
			}
		}
	}
}

func TestNormalizePiecesNegative(t *testing.T) {
	_, err := NormalizePieces(-1, 4)
	assert.Error(t, err)
}

func TestCalculateAvailable(t *testing.T) {
	avail, err := CalculateAvailable(
		Quantity{Boxes: 10, Pieces: 0}, // stock
		Quantity{Boxes: 2, Pieces: 3},  // sales
		Quantity{},                     // damage
		Quantity{},                     // returns
		4,
	)
	require.NoError(t, err)
	assert.Equal(t, Available{Boxes: 7, Pieces: 1, TotalPieces: 29}, avail)
}

func TestCalculateAvailableFlooredAtZero(t *testing.T) {
	avail, err := CalculateAvailable(
		Quantity{Boxes: 1, Pieces: 0},
		Quantity{Boxes: 5, Pieces: 0},
		Quantity{},
		Quantity{},
		4,
	)
	require.NoError(t, err)
	assert.Equal(t, Available{}, avail)
}

func TestCalculateAvailableReturnsAddBack(t *testing.T) {
	avail, err := CalculateAvailable(
		Quantity{Boxes: 5, Pieces: 0},
		Quantity{Boxes: 5, Pieces: 0},
		Quantity{},
		Quantity{Boxes: 1, Pieces: 2},
		4,
	)
	require.NoError(t, err)
	assert.Equal(t, Available{Boxes: 1, Pieces: 2, TotalPieces: 6}, avail)
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		needed    int
		available int
		operation string
		valid     bool
		message   string
	}{
		{"negative", -1, 10, "sale", false, "Cannot sale negative quantity"},
		{"zero", 0, 10, "sale", false, "Must sale at least 1 piece"},
		{"insufficient", 11, 10, "sale", false, "Insufficient quantity. Available: 10 pc, Needed: 11 pc"},
		{"exact", 10, 10, "sale", true, "Valid for sale"},
		{"damage op", 0, 10, "damage", false, "Must damage at least 1 piece"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := ValidateQuantity(tt.needed, tt.available, tt.operation)
			assert.Equal(t, tt.valid, check.IsValid)
			assert.Equal(t, tt.message, check.Message)
		})
	}
}

func TestValidateBoxesPieces(t *testing.T) {
	assert.False(t, ValidateBoxesPieces(-1, 0, 4).IsValid)
	assert.False(t, ValidateBoxesPieces(0, 4, 4).IsValid)
	assert.Equal(t, "Pieces must be less than 4", ValidateBoxesPieces(0, 4, 4).Message)
	assert.True(t, ValidateBoxesPieces(2, 3, 4).IsValid)
}

func TestAvailabilityStatus(t *testing.T) {
	assert.Equal(t, "out_of_stock", AvailabilityStatus(0, 4))
	assert.Equal(t, "critical", AvailabilityStatus(3, 4))
	assert.Equal(t, "low", AvailabilityStatus(4, 4))
	assert.Equal(t, "low", AvailabilityStatus(11, 4))
	assert.Equal(t, "good", AvailabilityStatus(12, 4))
}

func TestParseDualUnitInput(t *testing.T) {
	got, err := ParseDualUnitInput(3, "boxes", 4)
	require.NoError(t, err)
	assert.Equal(t, Available{Boxes: 3, Pieces: 0, TotalPieces: 12}, got)

	got, err = ParseDualUnitInput(7, "pieces", 4)
	require.NoError(t, err)
	assert.Equal(t, Available{Boxes: 1, Pieces: 3, TotalPieces: 7}, got)

	_, err = ParseDualUnitInput(0, "boxes", 4)
	assert.Error(t, err)
	_, err = ParseDualUnitInput(1, "crates", 4)
	assert.Error(t, err)
}

func TestPercentages(t *testing.T) {
	assert.Equal(t, 0.0, DamagePercentage(5, 0))
	assert.Equal(t, 12.5, DamagePercentage(1, 8))
	assert.Equal(t, 33.3, DamagePercentage(1, 3))
	assert.Equal(t, 0.0, ReturnRate(2, 0))
	assert.Equal(t, 50.0, ReturnRate(1, 2))
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "2 bx, 3 pc", FormatQty(2, 3))
	assert.Equal(t, "2 bx", FormatQty(2, 0))
	assert.Equal(t, "3 pc", FormatQty(0, 3))
	assert.Equal(t, "0", FormatQty(0, 0))
}
