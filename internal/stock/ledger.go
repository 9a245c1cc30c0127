package stock

import (
	"errors"
	"fmt"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry describes one stock change. Delta is signed and in base units.
type Entry struct {
	ProductID     uuid.UUID
	Delta         decimal.Decimal
	Type          model.MovementType
	ReferenceID   *uuid.UUID
	ReferenceType model.MovementReference
	Note          string
	Actor         string
}

// ErrNegative marks a change refused because it would take stock below zero.
var ErrNegative = errors.New("stock cannot go negative")

// Result is what Adjust leaves behind: the movement row and the product as
// it stands after the change.
type Result struct {
	Movement *model.StockMovement
	Product  *model.Product
}

// Adjust applies e inside tx. The stock update is a conditional
// "stock = ROUND(stock + delta) WHERE ROUND(stock + delta) >= 0", so two
// concurrent outflows can never jointly drive stock below zero. Rounding to
// QuantityScale in SQL keeps sqlite's float arithmetic from drifting. Exactly
// one movement row with the same signed delta is appended. tx must be a gorm
// transaction. A refused outflow is InvalidState wrapping ErrNegative.
func Adjust(tx *gorm.DB, e Entry) (*Result, error) {
	delta := e.Delta.Round(QuantityScale)
	if delta.IsZero() {
		return nil, apperror.InvalidState("stock change must not be zero")
	}

	next := fmt.Sprintf("ROUND(stock + ?, %d)", QuantityScale)
	q := tx.Model(&model.Product{}).Where("id = ?", e.ProductID)
	if delta.IsNegative() {
		q = q.Where(next+" >= 0", delta)
	}
	res := q.Updates(map[string]interface{}{
		"stock":      gorm.Expr(next, delta),
		"updated_by": e.Actor,
	})
	if res.Error != nil {
		return nil, apperror.Internal(res.Error, "failed to update stock")
	}

	var product model.Product
	if err := tx.First(&product, "id = ?", e.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", e.ProductID)
		}
		return nil, apperror.Internal(err, "failed to load product")
	}
	product.Stock = product.Stock.Round(QuantityScale)
	if res.RowsAffected == 0 {
		msg := fmt.Sprintf("%s: available %s %s, change %s",
			product.Name, product.Stock.String(), product.BaseUnit, delta.String())
		return nil, &apperror.Error{Kind: apperror.KindInvalidState, Message: msg, Err: ErrNegative}
	}

	movement := &model.StockMovement{
		ProductID:     product.ID,
		Type:          e.Type,
		Quantity:      delta,
		StockBefore:   product.Stock.Sub(delta),
		StockAfter:    product.Stock,
		ReferenceID:   e.ReferenceID,
		ReferenceType: e.ReferenceType,
		Note:          e.Note,
		CreatedBy:     e.Actor,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, apperror.Internal(err, "failed to record stock movement")
	}

	return &Result{Movement: movement, Product: &product}, nil
}
