package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderKey(t *testing.T) {
	assert.Equal(t, "unitprice", headerKey(" Unit_Price "))
	assert.Equal(t, "deliveryradiuskm", headerKey("Delivery radius (km)"))
	assert.Equal(t, "цена", headerKey("Цена"))
}

func TestEditDistance(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want int
	}{
		{"rating", "rating", 0},
		{"rating", "ratnig", 1},
		{"supplier", "suplier", 1},
		{"price", "prices", 1},
		{"", "abc", 3},
		{"commodity", "comodty", 2},
	} {
		assert.Equal(t, tc.want, editDistance(tc.a, tc.b), "%s/%s", tc.a, tc.b)
	}
}

func TestResolveTolerantHeaders(t *testing.T) {
	cols := DefaultMapping.resolve([]string{"Suplier Name", "Comodity", "Ratnig", "Lat", "Price"})
	assert.Equal(t, "Suplier Name", cols["name"])
	assert.Equal(t, "Comodity", cols["product"])
	assert.Equal(t, "Ratnig", cols["rating"])
	assert.Equal(t, "Lat", cols["latitude"])
	assert.Equal(t, "Price", cols["price"])
	_, ok := cols["originalPrice"]
	assert.False(t, ok)
}

func TestResolveShortAliasesAreExact(t *testing.T) {
	cols := DefaultMapping.resolve([]string{"lot", "Nmae"})
	_, ok := cols["latitude"]
	assert.False(t, ok)
	_, ok = cols["name"]
	assert.False(t, ok)
}
