package service

import (
	"testing"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/stock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRequest(f *fixture, sku string, units ...UnitRequest) *CreateProductRequest {
	return &CreateProductRequest{
		Name:       "Besi Beton 10mm",
		SKU:        sku,
		CategoryID: f.category.ID,
		Stock:      dec("5"),
		MinStock:   dec("2"),
		BaseUnit:   "batang",
		Units:      units,
	}
}

func TestCreateProduct_InitialStockIsLedgered(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)

	assertDec(t, "25", cement.Stock)
	assert.Equal(t, string(stock.StatusNormal), cement.StockStatus)
	assert.False(t, cement.HasTransactions)
	require.Len(t, cement.Units, 2)
	assert.Equal(t, "sak", cement.Units[0].Name)
	assert.True(t, cement.Units[0].IsBaseUnit)

	require.Len(t, cement.StockMovements, 1)
	m := cement.StockMovements[0]
	assert.Equal(t, model.MovementIn, m.Type)
	assert.Equal(t, model.RefInitial, m.ReferenceType)
	assertDec(t, "25", m.Quantity)
}

func TestCreateProduct_UnitRules(t *testing.T) {
	f := newFixture(t)
	base := UnitRequest{Name: "batang", Price: dec("82000"), ConversionRate: dec("1"), IsBaseUnit: true}

	cases := []struct {
		name  string
		units []UnitRequest
		want  error
	}{
		{"no base unit", []UnitRequest{{Name: "batang", Price: dec("82000"), ConversionRate: dec("1")}}, apperror.ErrInvalidState},
		{"two base units", []UnitRequest{base, {Name: "ikat", Price: dec("800000"), ConversionRate: dec("1"), IsBaseUnit: true}}, apperror.ErrInvalidState},
		{"base rate not one", []UnitRequest{{Name: "batang", Price: dec("82000"), ConversionRate: dec("2"), IsBaseUnit: true}}, apperror.ErrInvalidState},
		{"base name mismatch", []UnitRequest{{Name: "lonjor", Price: dec("82000"), ConversionRate: dec("1"), IsBaseUnit: true}}, apperror.ErrInvalidState},
		{"duplicate unit", []UnitRequest{base, {Name: "Batang", Price: dec("82000"), ConversionRate: dec("1")}}, apperror.ErrInvalidState},
		{"zero rate", []UnitRequest{base, {Name: "ikat", Price: dec("800000"), ConversionRate: dec("0")}}, apperror.ErrValidation},
		{"negative rate", []UnitRequest{base, {Name: "ikat", Price: dec("800000"), ConversionRate: dec("-10")}}, apperror.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(productRequest(f, "BSI-BT-10", tc.units...), cashier)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, err := f.catalog.ListProducts(repository.ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
}

func TestCreateProduct_References(t *testing.T) {
	f := newFixture(t)
	f.cement(t)
	units := []UnitRequest{{Name: "batang", Price: dec("82000"), ConversionRate: dec("1"), IsBaseUnit: true}}

	_, err := f.catalog.CreateProduct(productRequest(f, "SMN-TR-40", units...), cashier)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	req := productRequest(f, "BSI-BT-10", units...)
	req.CategoryID = uuid.New()
	_, err = f.catalog.CreateProduct(req, cashier)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	req = productRequest(f, "BSI-BT-10", units...)
	missing := uuid.New()
	req.SupplierID = &missing
	_, err = f.catalog.CreateProduct(req, cashier)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProduct_SKULockedAfterSale(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)

	renamed := "SMN-TR-40X"
	updated, err := f.catalog.UpdateProduct(cement.ID, &UpdateProductRequest{SKU: &renamed}, cashier)
	require.NoError(t, err)
	assert.Equal(t, renamed, updated.SKU)

	f.sell(t, model.PaymentCash, "65000", line(cement, "sak", "1", "65000"))

	back := "SMN-TR-40"
	_, err = f.catalog.UpdateProduct(cement.ID, &UpdateProductRequest{SKU: &back}, cashier)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	name := "Semen Tiga Roda 40 kg"
	minStock := dec("30")
	updated, err = f.catalog.UpdateProduct(cement.ID, &UpdateProductRequest{Name: &name, MinStock: &minStock}, cashier)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.HasTransactions)
	assertDec(t, "24", updated.Stock)
	assert.Equal(t, string(stock.StatusCritical), updated.StockStatus)
}

func TestUpdateProduct_SKUConflict(t *testing.T) {
	f := newFixture(t)
	f.cement(t)
	rebar := f.simple(t, "BSI-BT-10", "batang", "82000", "10")

	taken := "SMN-TR-40"
	_, err := f.catalog.UpdateProduct(rebar.ID, &UpdateProductRequest{SKU: &taken}, cashier)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)
	rebar := f.simple(t, "BSI-BT-10", "batang", "82000", "10")
	f.sell(t, model.PaymentCash, "65000", line(cement, "sak", "1", "65000"))

	err := f.catalog.DeleteProduct(cement.ID, cashier)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	require.NoError(t, f.catalog.DeleteProduct(rebar.ID, cashier))
	_, err = f.catalog.GetProduct(rebar.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	movements, err := f.stock.Movements(repository.MovementQuery{ProductID: &rebar.ID})
	require.NoError(t, err)
	assert.Empty(t, movements.Movements)
}

func TestListProducts_FiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	f.cement(t)
	f.simple(t, "BSI-BT-10", "batang", "82000", "100")
	f.simple(t, "KWT-BWG16", "roll", "275000", "1")

	low, err := f.catalog.ListProducts(repository.ProductQuery{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low.Products, 1)
	assert.Equal(t, "KWT-BWG16", low.Products[0].SKU)
	assert.Equal(t, string(stock.StatusCritical), low.Products[0].StockStatus)

	found, err := f.catalog.ListProducts(repository.ProductQuery{Search: "tiga roda"})
	require.NoError(t, err)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "SMN-TR-40", found.Products[0].SKU)

	byStock, err := f.catalog.ListProducts(repository.ProductQuery{SortBy: "stock", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, byStock.Products, 3)
	assert.Equal(t, "BSI-BT-10", byStock.Products[0].SKU)
	assert.Equal(t, "KWT-BWG16", byStock.Products[2].SKU)

	paged, err := f.catalog.ListProducts(repository.ProductQuery{Page: repository.Page{Page: 2, Limit: 2}, SortBy: "sku"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, paged.Pagination.Total)
	assert.EqualValues(t, 2, paged.Pagination.TotalPages)
	require.Len(t, paged.Products, 1)
	assert.Equal(t, "SMN-TR-40", paged.Products[0].SKU)
}

func TestProductStockPerUnit(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)
	f.sell(t, model.PaymentCash, "1625", line(cement, "kg", "1", "1625"))

	got, err := f.catalog.GetProduct(cement.ID)
	require.NoError(t, err)
	assertDec(t, "24.975", got.Stock)
	sak, ok := got.UnitByName("sak")
	require.True(t, ok)
	assertDec(t, "24.975", sak.Available)
	kg, ok := got.UnitByName("kg")
	require.True(t, ok)
	assertDec(t, "999", kg.Available)

	list, err := f.catalog.ListProducts(repository.ProductQuery{Search: "tiga roda"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	kg, ok = list.Products[0].UnitByName("kg")
	require.True(t, ok)
	assertDec(t, "999", kg.Available)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateCategory(&CategoryRequest{Name: "semen"}, cashier)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	empty, err := f.catalog.CreateCategory(&CategoryRequest{Name: "Keramik"}, cashier)
	require.NoError(t, err)
	f.cement(t)

	err = f.catalog.DeleteCategory(f.category.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	categories, err := f.catalog.ListCategories()
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, c := range categories {
		counts[c.Name] = c.ProductCount
	}
	assert.Equal(t, map[string]int64{"Semen": 1, "Keramik": 0}, counts)

	require.NoError(t, f.catalog.DeleteCategory(empty.ID))
	_, err = f.catalog.GetCategory(empty.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSuppliers(t *testing.T) {
	f := newFixture(t)
	supplier, err := f.catalog.CreateSupplier(&SupplierRequest{Name: "CV Baja Makmur", Contact: "0812"}, cashier)
	require.NoError(t, err)

	req := productRequest(f, "BSI-BT-10", UnitRequest{Name: "batang", Price: dec("82000"), ConversionRate: dec("1"), IsBaseUnit: true})
	req.SupplierID = &supplier.ID
	rebar, err := f.catalog.CreateProduct(req, cashier)
	require.NoError(t, err)
	require.NotNil(t, rebar.Supplier)
	assert.Equal(t, "CV Baja Makmur", rebar.Supplier.Name)

	err = f.catalog.DeleteSupplier(supplier.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	updated, err := f.catalog.UpdateProduct(rebar.ID, &UpdateProductRequest{ClearSupplier: true}, cashier)
	require.NoError(t, err)
	assert.Nil(t, updated.SupplierID)

	require.NoError(t, f.catalog.DeleteSupplier(supplier.ID))
}
