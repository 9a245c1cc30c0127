package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		stock, min string
		want       Status
	}{
		{"25", "10", StatusNormal},
		{"20.001", "10", StatusNormal},
		{"20", "10", StatusLow},
		{"15", "10", StatusLow},
		{"10", "10", StatusCritical},
		{"8", "10", StatusCritical},
		{"0", "0", StatusCritical},
		{"1", "0", StatusNormal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(d(tt.stock), d(tt.min)), "stock %s min %s", tt.stock, tt.min)
	}
}

func TestIsLow(t *testing.T) {
	assert.True(t, IsLow(d("10"), d("10")))
	assert.True(t, IsLow(d("0"), d("0")))
	assert.False(t, IsLow(d("10.5"), d("10")))
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, "CRITICAL", Urgency(d("0"), d("10")))
	assert.Equal(t, "HIGH", Urgency(d("5"), d("10")))
	assert.Equal(t, "MEDIUM", Urgency(d("6"), d("10")))
	// floor(7/2) = 3
	assert.Equal(t, "HIGH", Urgency(d("3"), d("7")))
	assert.Equal(t, "MEDIUM", Urgency(d("3.5"), d("7")))
}
