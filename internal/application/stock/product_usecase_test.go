package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

func TestCreateProductNew(t *testing.T) {
	f := newFixture()

	res, err := f.usecase.Create(CreateProductInput{
		Type:    "Floor",
		SubType: "Glossy",
		Size:    "2×2",
		Stock:   units.Quantity{Boxes: 10},
	})
	require.NoError(t, err)
	assert.False(t, res.Merged)
	assert.Equal(t, "Floor Glossy 2×2", res.Product.Name)
	assert.Equal(t, 4, res.Product.PiecesPerBox)
	assert.True(t, res.Product.IsActive)

	entry := f.history.last()
	require.NotNil(t, entry)
	assert.Equal(t, entity.ActionAddStock, entry.Action)
	assert.Equal(t, "Initial stock", entry.Notes)
	assert.Equal(t, units.Quantity{Boxes: 10}, entry.Quantity)
}

func TestCreateProductMergesIntoExisting(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Floor Glossy 2×2", 4, 10, 2)

	res, err := f.usecase.Create(CreateProductInput{
		Name:    "floor glossy 2×2",
		Type:    "Floor",
		SubType: "Glossy",
		Size:    "2×2",
		Stock:   units.Quantity{Boxes: 3, Pieces: 5},
	})
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.Equal(t, p.ID, res.Product.ID)
	// 42 pieces on hand plus 17 delivered, folded back into boxes of 4.
	assert.Equal(t, units.Quantity{Boxes: 14, Pieces: 3}, res.Product.Stock)

	entry := f.history.last()
	assert.Equal(t, entity.ActionAddStock, entry.Action)
	assert.Equal(t, "Stock added", entry.Notes)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture()

	_, err := f.usecase.Create(CreateProductInput{Size: "2×2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.usecase.Create(CreateProductInput{Type: "Floor", Size: "2×2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.usecase.Create(CreateProductInput{Type: "Wall", Size: "7×7"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unknown size")
}

func TestGetProduct(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Floor Glossy 2×2", 4, 10, 0)

	got, err := f.usecase.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, f.usecase.SoftDelete(p.ID))
	_, err = f.usecase.Get(p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProductTracksChanges(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Floor Glossy 2×2", 4, 10, 0)

	name := "Floor Glossy Premium 2×2"
	stock := units.Quantity{Boxes: 8, Pieces: 6}
	updated, err := f.usecase.Update(p.ID, UpdateProductInput{
		Name:  &name,
		Stock: &stock,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	// 6 loose pieces fold into 1 box 2 pieces on top of 8 boxes.
	assert.Equal(t, units.Quantity{Boxes: 9, Pieces: 2}, updated.Stock)

	entry := f.history.last()
	require.NotNil(t, entry)
	assert.Equal(t, entity.ActionProductUpdate, entry.Action)
	assert.Equal(t, units.Quantity{}, entry.Change)
	assert.Equal(t, updated.Stock, entry.Quantity)
	assert.Contains(t, entry.Notes, "Stock updated")
	assert.Contains(t, entry.Notes, `Name: "Floor Glossy 2×2" → "Floor Glossy Premium 2×2"`)
}

func TestUpdateProductNoChangesNoEntry(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Floor Glossy 2×2", 4, 10, 0)

	same := p.Name
	_, err := f.usecase.Update(p.ID, UpdateProductInput{Name: &same})
	require.NoError(t, err)
	assert.Empty(t, f.history.entries)
}

func TestLowStockThresholds(t *testing.T) {
	f := newFixture()
	p1 := f.seedProduct("Floor Glossy 2×2", 4, 10, 0)
	p2 := f.seedProduct("Floor Matt 2×2", 4, 10, 0)

	updated, err := f.usecase.UpdateLowStockThreshold(p1.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.LowStockThreshold)

	_, err = f.usecase.UpdateLowStockThreshold(p1.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := f.usecase.BulkUpdateLowStockThreshold([]string{p1.ID, p2.ID, "missing"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.usecase.BulkUpdateLowStockThreshold(nil, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateDamagedStatus(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Floor Glossy 2×2", 4, 10, 0)
	_, err := f.ledger.ShopDamage(p.ID, MutationInput{Pieces: 2})
	require.NoError(t, err)

	rec := f.damaged.records[0]
	updated, err := f.usecase.UpdateDamagedStatus(rec.ID, entity.DamagedStatusDisposed)
	require.NoError(t, err)
	assert.Equal(t, entity.DamagedStatusDisposed, updated.Status)

	_, err = f.usecase.UpdateDamagedStatus(rec.ID, "gone")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.usecase.UpdateDamagedStatus("missing", entity.DamagedStatusDisposed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
