// Package stock holds the rules that keep a product's stock consistent:
// unit conversion, the stock status formula and the movement ledger.
package stock

import (
	"toko-bangunan-pos/internal/model"

	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places stock quantities are stored with.
const QuantityScale = 3

// ValidRate reports whether rate can be used as a unit conversion rate.
func ValidRate(rate decimal.Decimal) bool {
	return rate.IsPositive()
}

// ToBaseQuantity converts quantity, expressed in unit, into base units.
func ToBaseQuantity(quantity decimal.Decimal, unit model.ProductUnit) decimal.Decimal {
	return quantity.Mul(unit.ConversionRate).Round(QuantityScale)
}

// ToUnitQuantity converts a base-unit quantity into unit. Units with a
// non-positive rate never pass catalog validation; they yield zero here.
func ToUnitQuantity(baseQuantity decimal.Decimal, unit model.ProductUnit) decimal.Decimal {
	if !ValidRate(unit.ConversionRate) {
		return decimal.Zero
	}
	return baseQuantity.Div(unit.ConversionRate)
}

// HasSufficientStock reports whether currentStock, in base units, covers
// quantity sold in unit.
func HasSufficientStock(currentStock, quantity decimal.Decimal, unit model.ProductUnit) bool {
	return currentStock.GreaterThanOrEqual(ToBaseQuantity(quantity, unit))
}

// Annotate fills the read-only fields of p: its stock status and the stock
// expressed in every sales unit, truncated so it never overstates what can
// be sold.
func Annotate(p *model.Product) {
	p.StockStatus = string(StatusOf(p.Stock, p.MinStock))
	for i := range p.Units {
		p.Units[i].Available = ToUnitQuantity(p.Stock, p.Units[i]).Truncate(QuantityScale)
	}
}
