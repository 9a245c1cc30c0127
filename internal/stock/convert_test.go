package stock

import (
	"testing"

	"toko-bangunan-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func unit(rate string) model.ProductUnit {
	return model.ProductUnit{Name: "u", ConversionRate: decimal.RequireFromString(rate)}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToBaseQuantity(t *testing.T) {
	tests := []struct {
		qty, rate, want string
	}{
		{"2", "1", "2"},
		{"40", "0.025", "1"},
		{"10", "0.025", "0.25"},
		{"3", "12", "36"},
		{"1", "0.333333", "0.333"},
	}
	for _, tt := range tests {
		got := ToBaseQuantity(d(tt.qty), unit(tt.rate))
		assert.True(t, d(tt.want).Equal(got), "%s x %s: want %s got %s", tt.qty, tt.rate, tt.want, got)
	}
}

func TestToUnitQuantity(t *testing.T) {
	assert.True(t, d("40").Equal(ToUnitQuantity(d("1"), unit("0.025"))))
	assert.True(t, d("2").Equal(ToUnitQuantity(d("24"), unit("12"))))
	assert.True(t, ToUnitQuantity(d("5"), unit("0")).IsZero())
}

func TestHasSufficientStock(t *testing.T) {
	kg := unit("0.025")
	assert.True(t, HasSufficientStock(d("1"), d("40"), kg))
	assert.False(t, HasSufficientStock(d("1"), d("41"), kg))
	assert.True(t, HasSufficientStock(d("0"), d("0"), kg))
}

func TestValidRate(t *testing.T) {
	assert.True(t, ValidRate(d("0.001")))
	assert.False(t, ValidRate(d("0")))
	assert.False(t, ValidRate(d("-1")))
}

func TestUnitQuantityRoundTrip(t *testing.T) {
	rates := []string{"1", "0.025", "0.5", "12", "0.333333", "0.001"}
	quantities := []string{"1", "3", "0.5", "2.75", "40", "0.125", "1000"}
	half := d("0.0005")
	for _, r := range rates {
		u := unit(r)
		tolerance := half.Div(u.ConversionRate)
		for _, q := range quantities {
			back := ToUnitQuantity(ToBaseQuantity(d(q), u), u)
			diff := back.Sub(d(q)).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"rate %s qty %s came back as %s", r, q, back.String())
		}
	}
}

func TestAnnotate(t *testing.T) {
	p := model.Product{
		Stock:    d("25"),
		MinStock: d("10"),
		Units: []model.ProductUnit{
			{Name: "sak", ConversionRate: d("1")},
			{Name: "kg", ConversionRate: d("0.025")},
			{Name: "dus", ConversionRate: d("3")},
		},
	}
	Annotate(&p)

	assert.Equal(t, string(StatusNormal), p.StockStatus)
	assert.True(t, d("25").Equal(p.Units[0].Available))
	assert.True(t, d("1000").Equal(p.Units[1].Available))
	assert.True(t, d("8.333").Equal(p.Units[2].Available), "truncated, got %s", p.Units[2].Available)
}
