package repository

import (
	"time"

	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementQuery struct {
	Page
	ProductID *uuid.UUID
	Type      model.MovementType
	From      *time.Time
	To        *time.Time
}

// MovementDay is one point of the stock movement chart, in base units.
type MovementDay struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type StockMovementRepository interface {
	FindAll(q MovementQuery) ([]model.StockMovement, int64, error)
	FindByReference(referenceID uuid.UUID) ([]model.StockMovement, error)
	DailyTotals(from, to time.Time) ([]MovementDay, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) FindAll(q MovementQuery) ([]model.StockMovement, int64, error) {
	query := r.db.Model(&model.StockMovement{})
	if q.ProductID != nil {
		query = query.Where("product_id = ?", *q.ProductID)
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.From != nil {
		query = query.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("created_at < ?", *q.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.StockMovement
	err := query.
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Select("id", "name", "sku", "base_unit")
		}).
		Order("created_at DESC").
		Scopes(q.Page.scope).
		Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) FindByReference(referenceID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Where("reference_id = ?", referenceID).Order("created_at ASC").Find(&movements).Error
	return movements, err
}

// DailyTotals sums inflow and outflow per calendar day.
func (r *stockMovementRepo) DailyTotals(from, to time.Time) ([]MovementDay, error) {
	var results []MovementDay

	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day  interface{}
			data MovementDay
		)
		if err := rows.Scan(&day, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		data.Date = formatDay(day)
		results = append(results, data)
	}

	return results, rows.Err()
}

// formatDay normalises what DATE() yields across drivers: a string on
// sqlite, a time.Time on postgres.
func formatDay(v interface{}) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case []byte:
		return string(d)
	case string:
		return d
	default:
		return ""
	}
}
