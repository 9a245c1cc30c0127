package service

import (
	"testing"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/stock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust_Directions(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)

	res, err := f.stock.Adjust(&AdjustStockRequest{ProductID: cement.ID, Type: model.MovementIn, Quantity: dec("-5")}, cashier)
	require.NoError(t, err)
	assertDec(t, "25", res.PreviousStock)
	assertDec(t, "30", res.NewStock)
	assertDec(t, "5", res.Movement.Quantity)
	assert.Equal(t, model.RefManual, res.Movement.ReferenceType)

	res, err = f.stock.Adjust(&AdjustStockRequest{ProductID: cement.ID, Type: model.MovementOut, Quantity: dec("12")}, cashier)
	require.NoError(t, err)
	assertDec(t, "18", res.NewStock)
	assertDec(t, "-12", res.Movement.Quantity)
	assert.Equal(t, stock.StatusLow, res.StockStatus)

	res, err = f.stock.Adjust(&AdjustStockRequest{ProductID: cement.ID, Type: model.MovementAdjustment, Quantity: dec("-10"), Note: "stock opname"}, cashier)
	require.NoError(t, err)
	assertDec(t, "8", res.NewStock)
	assert.Equal(t, "stock opname", res.Movement.Note)
	assert.Equal(t, stock.StatusCritical, res.StockStatus)
}

func TestAdjust_NeverNegative(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)

	_, err := f.stock.Adjust(&AdjustStockRequest{ProductID: cement.ID, Type: model.MovementOut, Quantity: dec("26")}, cashier)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	_, err = f.stock.Adjust(&AdjustStockRequest{ProductID: cement.ID, Type: model.MovementOut, Quantity: dec("0")}, cashier)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assertDec(t, "25", f.stockOf(t, cement.ID))
	movements, err := f.stock.Movements(repository.MovementQuery{ProductID: &cement.ID})
	require.NoError(t, err)
	assert.Len(t, movements.Movements, 1)
}

func TestLowStock_OrderAndUrgency(t *testing.T) {
	f := newFixture(t)
	f.cement(t)
	f.simple(t, "KWT-BWG16", "roll", "275000", "1")
	empty := f.simple(t, "KUS-3IN", "pcs", "15000", "1")
	_, err := f.stock.Adjust(&AdjustStockRequest{ProductID: empty.ID, Type: model.MovementOut, Quantity: dec("1")}, cashier)
	require.NoError(t, err)

	items, err := f.stock.LowStock()
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "KUS-3IN", items[0].SKU)
	assert.Equal(t, "CRITICAL", items[0].Urgency)
	assert.Equal(t, "KWT-BWG16", items[1].SKU)
	assert.Equal(t, string(stock.StatusCritical), items[1].StockStatus)
}

func TestStockStats(t *testing.T) {
	f := newFixture(t)
	f.cement(t)
	f.simple(t, "KWT-BWG16", "roll", "275000", "1")

	stats, err := f.stock.Stats()
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.EqualValues(t, 0, stats.OutOfStockCount)
	assertDec(t, "26", stats.TotalStock)
	require.Len(t, stats.ByCategory, 1)
	assert.EqualValues(t, 2, stats.ByCategory[0].ProductCount)
}
