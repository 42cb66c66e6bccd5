package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"recommend-service/internal/recommend/model"
)

func TestPriceValue(t *testing.T) {
	tests := []struct {
		in   model.PriceValue
		want float64
	}{
		{model.NumberPrice(20), 20},
		{model.NumberPrice(-3.5), -3.5},
		{model.TextPrice("20"), 20},
		{model.TextPrice("  18.75 "), 18.75},
		{model.TextPrice("20/kg"), 20},
		{model.TextPrice("1e2 rupees"), 100},
		{model.TextPrice("3e"), 3},
		{model.TextPrice(".5"), 0.5},
		{model.TextPrice("-7."), -7},
		{model.TextPrice("+4"), 4},
		{model.TextPrice("0x10"), 0},
		{model.TextPrice("1,200"), 1},
		{model.TextPrice("Infinity"), math.Inf(1)},
		{model.TextPrice("-Infinity"), math.Inf(-1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriceValue(tt.in), "%+v", tt.in)
	}
}

func TestPriceValueNaN(t *testing.T) {
	for _, s := range []string{"", "   ", "₹20", "abc", "-", ".", "e5", "+.e1"} {
		assert.True(t, math.IsNaN(PriceValue(model.TextPrice(s))), "%q", s)
	}
	assert.True(t, math.IsNaN(PriceValue(model.PriceValue{})), "zero value")
}
