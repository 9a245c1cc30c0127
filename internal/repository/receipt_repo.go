package repository

import (
	"toko-bangunan-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptRepository hands out per-day receipt sequence numbers.
type ReceiptRepository interface {
	Next(tx *gorm.DB, day string) (int64, error)
}

type receiptRepo struct{}

func NewReceiptRepo() ReceiptRepository {
	return &receiptRepo{}
}

// Next increments the counter for day and returns the new value. The upsert
// holds the counter row until tx commits, so concurrent sales on the same day
// queue behind each other instead of sharing a number.
func (r *receiptRepo) Next(tx *gorm.DB, day string) (int64, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("receipt_counters.last_value + 1"),
		}),
	}).Create(&model.ReceiptCounter{Day: day, LastValue: 1}).Error
	if err != nil {
		return 0, err
	}

	var counter model.ReceiptCounter
	if err := tx.First(&counter, "day = ?", day).Error; err != nil {
		return 0, err
	}
	return counter.LastValue, nil
}
