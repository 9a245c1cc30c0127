package repository

import (
	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductQuery struct {
	Page
	Search     string
	CategoryID *uuid.UUID
	SupplierID *uuid.UUID
	LowStock   bool
	SortBy     string
	SortOrder  string
}

var productSortColumns = map[string]string{
	"name":      "name",
	"sku":       "sku",
	"stock":     "stock",
	"createdAt": "created_at",
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(q ProductQuery) ([]model.Product, int64, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindWithUnits(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindLowStock() ([]model.Product, error)
	Update(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ReplaceUnits(tx *gorm.DB, productID uuid.UUID, units []model.ProductUnit) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	CountTransactionItems(id uuid.UUID) (int64, error)
	TransactionItemCounts(ids []uuid.UUID) (map[uuid.UUID]int64, error)
	Stats() (*ProductStats, error)
}

// ProductStats is the stock overview. Low and out-of-stock counts are
// recomputed from live stock on every call.
type ProductStats struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	TotalStock      decimal.Decimal `json:"total_stock"`
	StockValue      decimal.Decimal `json:"stock_value"`
	ByCategory      []CategoryStock `json:"by_category"`
}

type CategoryStock struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ProductCount int64           `json:"product_count"`
	TotalStock   decimal.Decimal `json:"total_stock"`
	LowStock     int64           `json:"low_stock"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func unitsOrder(db *gorm.DB) *gorm.DB {
	return db.Order("is_base_unit DESC").Order("conversion_rate DESC")
}

// Create stores the product together with its units.
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(q ProductQuery) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", p, p, p)
	}
	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}
	if q.SupplierID != nil {
		query = query.Where("supplier_id = ?", *q.SupplierID)
	}
	if q.LowStock {
		query = query.Where("stock <= min_stock")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := query.
		Preload("Category").
		Preload("Supplier").
		Preload("Units", unitsOrder).
		Order(orderBy(q.SortBy, q.SortOrder, productSortColumns, "name")).
		Scopes(q.Page.scope).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Category").
		Preload("Supplier").
		Preload("Units", unitsOrder).
		Preload("StockMovements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(10)
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindWithUnits loads a product and its units inside tx, locking the row
// where the dialect supports it.
func (r *productRepo) FindWithUnits(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("product_id = ?", id).Scopes(unitsOrder).Find(&product.Units).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindLowStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Preload("Category").
		Preload("Units", "is_base_unit = ?", true).
		Where("stock <= min_stock").
		Order("stock ASC").Order("name ASC").
		Find(&products).Error
	return products, err
}

// Update writes the given columns only. Stock is never among them: it
// changes through the stock ledger alone.
func (r *productRepo) Update(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	delete(fields, "stock")
	return tx.Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceUnits swaps the unit list wholesale. Sale lines keep their own
// snapshot of the unit, so dropping the old rows is safe.
func (r *productRepo) ReplaceUnits(tx *gorm.DB, productID uuid.UUID, units []model.ProductUnit) error {
	if err := tx.Unscoped().Where("product_id = ?", productID).Delete(&model.ProductUnit{}).Error; err != nil {
		return err
	}
	for i := range units {
		units[i].ProductID = productID
	}
	if len(units) == 0 {
		return nil
	}
	return tx.Create(&units).Error
}

// Delete removes the product with its units and movement history.
func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("product_id = ?", id).Delete(&model.StockMovement{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("product_id = ?", id).Delete(&model.ProductUnit{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) CountTransactionItems(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.TransactionItem{}).Where("product_id = ?", id).Count(&count).Error
	return count, err
}

func (r *productRepo) TransactionItemCounts(ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		ProductID uuid.UUID
		Count     int64
	}
	err := r.db.Model(&model.TransactionItem{}).
		Select("product_id, COUNT(*) AS count").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ProductID] = row.Count
	}
	return counts, nil
}

func (r *productRepo) Stats() (*ProductStats, error) {
	var totals struct {
		TotalProducts   int64
		LowStockCount   int64
		OutOfStockCount int64
		TotalStock      decimal.Decimal
		StockValue      decimal.Decimal
	}
	err := r.db.Model(&model.Product{}).Select(`
		COUNT(*) AS total_products,
		COALESCE(SUM(CASE WHEN stock <= min_stock THEN 1 ELSE 0 END), 0) AS low_stock_count,
		COALESCE(SUM(CASE WHEN stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock_count,
		COALESCE(SUM(stock), 0) AS total_stock,
		COALESCE(SUM(stock * cost), 0) AS stock_value
	`).Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var byCategory []CategoryStock
	err = r.db.Model(&model.Product{}).
		Select(`
			categories.id AS category_id,
			categories.name AS category_name,
			COUNT(products.id) AS product_count,
			COALESCE(SUM(products.stock), 0) AS total_stock,
			COALESCE(SUM(CASE WHEN products.stock <= products.min_stock THEN 1 ELSE 0 END), 0) AS low_stock
		`).
		Joins("JOIN categories ON categories.id = products.category_id").
		Group("categories.id, categories.name").
		Order("categories.name ASC").
		Scan(&byCategory).Error
	if err != nil {
		return nil, err
	}

	return &ProductStats{
		TotalProducts:   totals.TotalProducts,
		LowStockCount:   totals.LowStockCount,
		OutOfStockCount: totals.OutOfStockCount,
		TotalStock:      totals.TotalStock.Round(3),
		StockValue:      totals.StockValue.Round(2),
		ByCategory:      byCategory,
	}, nil
}
