package stock

import "github.com/shopspring/decimal"

type Status string

const (
	StatusNormal   Status = "NORMAL"
	StatusLow      Status = "LOW"
	StatusCritical Status = "CRITICAL"
)

var two = decimal.NewFromInt(2)

// StatusOf is the one place the stock status formula lives. Listings, detail
// views, adjustments and the low-stock report all call it.
func StatusOf(stock, minStock decimal.Decimal) Status {
	switch {
	case !stock.IsPositive(), stock.LessThanOrEqual(minStock):
		return StatusCritical
	case stock.LessThanOrEqual(minStock.Mul(two)):
		return StatusLow
	default:
		return StatusNormal
	}
}

// IsLow is the low-stock predicate used for filtering and reports.
func IsLow(stock, minStock decimal.Decimal) bool {
	return stock.LessThanOrEqual(minStock)
}

// Urgency ranks a low-stock product for restocking.
func Urgency(stock, minStock decimal.Decimal) string {
	switch {
	case !stock.IsPositive():
		return "CRITICAL"
	case stock.LessThanOrEqual(minStock.Div(two).Floor()):
		return "HIGH"
	default:
		return "MEDIUM"
	}
}
