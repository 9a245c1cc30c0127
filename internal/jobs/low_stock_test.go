package jobs

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"toko-bangunan-pos/internal/logging"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"
	"toko-bangunan-pos/internal/ws"
	"toko-bangunan-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T) (*gorm.DB, service.StockService) {
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

	svc := service.NewStockService(repository.NewProductRepo(db), repository.NewStockMovementRepo(db), db, nil, logging.Discard())
	return db, svc
}

func addProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, sku, stock, min string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Product{
		Name:       "Produk " + sku,
		SKU:        sku,
		CategoryID: categoryID,
		Stock:      decimal.RequireFromString(stock),
		MinStock:   decimal.RequireFromString(min),
		BaseUnit:   "pcs",
	}).Error)
}

func TestLowStockAlert_Run(t *testing.T) {
	db, svc := setup(t)
	category := &model.Category{Name: "Cat & Alat Cat"}
	require.NoError(t, db.Create(category).Error)
	addProduct(t, db, category.ID, "KUS-3IN", "0", "5")
	addProduct(t, db, category.ID, "CAT-DLX-5", "4", "4")
	addProduct(t, db, category.ID, "SMN-TR-40", "25", "10")

	hub := ws.NewHub(logging.Discard())
	job := NewLowStockAlert(svc, hub, logging.Discard(), "0 7 * * *", time.UTC)

	count, err := job.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	select {
	case msg := <-hub.Broadcast:
		var event struct {
			Type string                   `json:"type"`
			Data []map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, ws.EventLowStockAlert, event.Type)
		require.Len(t, event.Data, 2)
		assert.Equal(t, "KUS-3IN", event.Data[0]["sku"], "emptiest first")
		assert.Equal(t, "CRITICAL", event.Data[0]["urgency"])
	case <-time.After(2 * time.Second):
		t.Fatal("no low_stock_alert broadcast")
	}
}

func TestLowStockAlert_NothingLow(t *testing.T) {
	_, svc := setup(t)
	job := NewLowStockAlert(svc, nil, logging.Discard(), "0 7 * * *", time.UTC)

	count, err := job.Run()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLowStockAlert_Schedule(t *testing.T) {
	_, svc := setup(t)

	bad := NewLowStockAlert(svc, nil, logging.Discard(), "every morning", time.UTC)
	assert.Error(t, bad.Start())

	job := NewLowStockAlert(svc, nil, logging.Discard(), "0 7 * * *", time.UTC)
	require.NoError(t, job.Start())
	defer job.Stop()

	next := job.Next()
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}
