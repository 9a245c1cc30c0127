package service

import (
	"fmt"
	"testing"
	"time"

	"toko-bangunan-pos/internal/logging"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	cashier   = Actor{ID: uuid.NewString(), Name: "Kasir Satu"}
	saleClock = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Options{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db       *gorm.DB
	catalog  CatalogService
	stock    StockService
	txns     *transactionService
	debts    DebtService
	category *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := logging.Discard()

	productRepo := repository.NewProductRepo(db)
	debtRepo := repository.NewDebtRepo(db)
	catalog := NewCatalogService(productRepo, repository.NewCategoryRepo(db), repository.NewSupplierRepo(db), db, nil, log)
	txns := NewTransactionService(repository.NewTransactionRepo(db), productRepo, debtRepo, repository.NewReceiptRepo(), db, nil, log, time.UTC).(*transactionService)
	txns.now = func() time.Time { return saleClock }

	category, err := catalog.CreateCategory(&CategoryRequest{Name: "Semen"}, cashier)
	require.NoError(t, err)

	return &fixture{
		db:       db,
		catalog:  catalog,
		stock:    NewStockService(productRepo, repository.NewStockMovementRepo(db), db, nil, log),
		txns:     txns,
		debts:    NewDebtService(debtRepo, txns),
		category: category,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// cement is a 40kg sack sold per sack or per kilogram.
func (f *fixture) cement(t *testing.T) *model.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(&CreateProductRequest{
		Name:       "Semen Tiga Roda 40kg",
		SKU:        "SMN-TR-40",
		CategoryID: f.category.ID,
		Cost:       dec("58000"),
		Stock:      dec("25"),
		MinStock:   dec("10"),
		BaseUnit:   "sak",
		Units: []UnitRequest{
			{Name: "sak", Price: dec("65000"), ConversionRate: dec("1"), IsBaseUnit: true},
			{Name: "kg", Price: dec("1625"), ConversionRate: dec("0.025")},
		},
	}, cashier)
	require.NoError(t, err)
	return p
}

// simple creates a single-unit product.
func (f *fixture) simple(t *testing.T, sku, unit, price, stock string) *model.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(&CreateProductRequest{
		Name:       "Produk " + sku,
		SKU:        sku,
		CategoryID: f.category.ID,
		Stock:      dec(stock),
		MinStock:   dec("1"),
		BaseUnit:   unit,
		Units:      []UnitRequest{{Name: unit, Price: dec(price), ConversionRate: dec("1"), IsBaseUnit: true}},
	}, cashier)
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := f.catalog.GetProduct(id)
	require.NoError(t, err)
	return p.Stock
}

func line(p *model.Product, unit, qty, price string) SaleItemRequest {
	q, pr := dec(qty), dec(price)
	return SaleItemRequest{ProductID: p.ID, UnitName: unit, Quantity: q, Price: pr, Subtotal: q.Mul(pr)}
}

func (f *fixture) sell(t *testing.T, method model.PaymentMethod, paid string, items ...SaleItemRequest) *model.Transaction {
	t.Helper()
	txn, err := f.txns.Create(&CreateTransactionRequest{
		CustomerName:  "Pak Budi",
		CustomerPhone: "0812000111",
		PaymentMethod: method,
		PaidAmount:    dec(paid),
		Items:         items,
	}, cashier)
	require.NoError(t, err)
	return txn
}
