package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommend-service/internal/recommend/model"
)

// latForKm returns the latitude that lies km north of the equator on the prime meridian.
func latForKm(km float64) float64 { return km / (earthRadiusKm * math.Pi / 180) }

func supplier(id, product string, rating, price, km float64) model.Supplier {
	return model.Supplier{
		ID:            id,
		Name:          "Supplier " + id,
		Product:       product,
		OriginalPrice: model.NumberPrice(price),
		Latitude:      latForKm(km),
		Rating:        rating,
	}
}

var origin = &model.Location{Latitude: 0, Longitude: 0, Name: "stall"}

func scenario() []model.Supplier {
	return []model.Supplier{
		supplier("A", "Tomatoes", 4.8, 20, 2),
		supplier("B", "Tomatoes", 3.0, 15, 20),
		supplier("C", "Tomatoes", 4.0, 15, 1),
	}
}

func ids(rs []model.Ranked) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestRecommendScenario(t *testing.T) {
	res := Recommend(Request{Suppliers: scenario(), Location: origin, Sort: model.SortSmart})

	require.Len(t, res.Top, 3)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, []string{"A", "C", "B"}, ids(res.Top))

	byID := map[string]model.Ranked{}
	for _, r := range res.Top {
		byID[r.ID] = r
	}
	assert.Equal(t, []model.Tag{model.TagTopRated, model.TagNearest}, byID["A"].Tags)
	assert.Equal(t, []model.Tag{model.TagNearest, model.TagBestPrice}, byID["C"].Tags)
	assert.Equal(t, []model.Tag{model.TagBestPrice}, byID["B"].Tags)

	assert.InDelta(t, 82.0, byID["A"].Score, 1e-6)
	assert.InDelta(t, 70.5, byID["C"].Score, 1e-6)
	assert.InDelta(t, 12.5, byID["B"].Score, 1e-6)
	assert.InDelta(t, 2.0, byID["A"].DistanceKm, 1e-6)
}

func TestRecommendIsDeterministic(t *testing.T) {
	cands := append(scenario(), supplier("D", "Onions", 4.5, 15, 3), supplier("E", "Onions", 4.5, 15, 3))
	for _, mode := range []model.SortMode{model.SortSmart, model.SortPrice, model.SortDistance, model.SortRating} {
		first := Recommend(Request{Suppliers: cands, Location: origin, Sort: mode})
		second := Recommend(Request{Suppliers: cands, Location: origin, Sort: mode})
		assert.Equal(t, first, second, "mode %s", mode)
	}
}

func TestRecommendDoesNotMutateInput(t *testing.T) {
	cands := scenario()
	before := make([]model.Supplier, len(cands))
	copy(before, cands)

	Recommend(Request{Suppliers: cands, Location: origin, Sort: model.SortPrice})
	assert.Equal(t, before, cands)
}

func TestRecommendEmpty(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		res := Recommend(Request{})
		assert.NotNil(t, res.Top)
		assert.Empty(t, res.Top)
		assert.Zero(t, res.Matched)
	})

	t.Run("filter matches nothing", func(t *testing.T) {
		cands := []model.Supplier{supplier("O", "Onions", 4, 10, 1)}
		res := Recommend(Request{Suppliers: cands, Commodity: "Tomatoes", Location: origin})
		assert.Empty(t, res.Top)
	})
}

func TestRecommendWithoutLocation(t *testing.T) {
	res := Recommend(Request{Suppliers: scenario(), Sort: model.SortSmart})
	for _, r := range res.Top {
		assert.Zero(t, r.DistanceKm)
		assert.False(t, r.HasTag(model.TagNearest), r.ID)
	}
	// без расстояния A: 96-10, C: 80-7.5, B: 60-7.5
	assert.Equal(t, []string{"A", "C", "B"}, ids(res.Top))
	assert.InDelta(t, 86.0, res.Top[0].Score, 1e-9)
}

func TestTopRatedIndependentOfModeAndLocation(t *testing.T) {
	cands := []model.Supplier{
		supplier("x", "Rice", 4.5, 30, 50),
		supplier("y", "Rice", 4.49, 10, 1),
		supplier("z", "Rice", 7, 40, 8), // out of nominal range, not clamped
	}
	for _, loc := range []*model.Location{nil, origin} {
		for _, mode := range []model.SortMode{model.SortSmart, model.SortPrice, model.SortDistance, model.SortRating} {
			res := Recommend(Request{Suppliers: cands, Location: loc, Sort: mode})
			for _, r := range res.Top {
				assert.Equal(t, r.Rating >= 4.5, r.HasTag(model.TagTopRated), "%s/%s", mode, r.ID)
			}
		}
	}
}

func TestBestPriceTag(t *testing.T) {
	cands := []model.Supplier{
		supplier("a", "Rice", 3, 12.5, 1),
		supplier("b", "Rice", 3, 10, 1),
		supplier("c", "Rice", 3, 10, 1),
		supplier("d", "Rice", 3, 11, 1),
	}
	scored := TagBestPrice(ScoreAll(cands, nil))
	got := map[string]bool{}
	for _, r := range scored {
		got[r.ID] = r.HasTag(model.TagBestPrice)
	}
	assert.Equal(t, map[string]bool{"a": false, "b": true, "c": true, "d": false}, got)
}

func TestBestPriceIgnoresNaN(t *testing.T) {
	cands := []model.Supplier{
		{ID: "bad", OriginalPrice: model.TextPrice("call us")},
		{ID: "ok", OriginalPrice: model.TextPrice("42 per kg")},
	}
	scored := TagBestPrice(ScoreAll(cands, nil))
	assert.False(t, scored[0].HasTag(model.TagBestPrice))
	assert.True(t, scored[1].HasTag(model.TagBestPrice))
	assert.True(t, math.IsNaN(scored[0].Score))
}

func TestRankOrders(t *testing.T) {
	cands := []model.Supplier{
		supplier("p1", "Rice", 2.0, 30, 4),
		supplier("p2", "Rice", 4.9, 25, 9),
		supplier("p3", "Rice", 3.5, 10, 2),
		supplier("p4", "Rice", 4.9, 10, 7),
	}

	t.Run("price ascending", func(t *testing.T) {
		out := Rank(ScoreAll(cands, origin), model.SortPrice)
		for i := 1; i < len(out); i++ {
			assert.LessOrEqual(t, out[i-1].PriceValue, out[i].PriceValue)
		}
		// p3 and p4 tie on price and keep input order
		assert.Equal(t, []string{"p3", "p4", "p2", "p1"}, ids(out))
	})

	t.Run("distance ascending", func(t *testing.T) {
		out := Rank(ScoreAll(cands, origin), model.SortDistance)
		assert.Equal(t, []string{"p3", "p1", "p4", "p2"}, ids(out))
	})

	t.Run("rating descending", func(t *testing.T) {
		out := Rank(ScoreAll(cands, origin), model.SortRating)
		for i := 1; i < len(out); i++ {
			assert.GreaterOrEqual(t, out[i-1].Rating, out[i].Rating)
		}
		assert.Equal(t, []string{"p2", "p4", "p3", "p1"}, ids(out))
	})

	t.Run("unknown mode falls back to smart", func(t *testing.T) {
		a := Rank(ScoreAll(cands, origin), model.ParseSortMode("whatever"))
		b := Rank(ScoreAll(cands, origin), model.SortSmart)
		assert.Equal(t, ids(b), ids(a))
		for i := 1; i < len(a); i++ {
			assert.GreaterOrEqual(t, a[i-1].Score, a[i].Score)
		}
	})
}

func TestRankPutsNaNLast(t *testing.T) {
	cands := []model.Supplier{
		{ID: "n1", OriginalPrice: model.TextPrice("n/a")},
		{ID: "ok", OriginalPrice: model.NumberPrice(5)},
		{ID: "n2", OriginalPrice: model.TextPrice("")},
	}
	for _, mode := range []model.SortMode{model.SortPrice, model.SortSmart} {
		out := Rank(ScoreAll(cands, nil), mode)
		assert.Equal(t, []string{"ok", "n1", "n2"}, ids(out), string(mode))
	}
}

func TestTop(t *testing.T) {
	ranked := ScoreAll([]model.Supplier{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}, nil)
	for n := 0; n <= 5; n++ {
		got := Top(ranked[:n], model.DefaultTopN)
		assert.Len(t, got, min(n, model.DefaultTopN))
	}
	assert.Empty(t, Top(nil, 3))
	assert.NotNil(t, Top(nil, 3))
}

func TestFilterByCommodity(t *testing.T) {
	cands := []model.Supplier{{ID: "1", Product: "Tomatoes"}, {ID: "2", Product: "tomatoes"}, {ID: "3", Product: "Onions"}}

	assert.Equal(t, cands, FilterByCommodity(cands, model.CommodityAll))
	got := FilterByCommodity(cands, "Tomatoes")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Empty(t, FilterByCommodity(cands, "Potatoes"))
}

func TestCommodities(t *testing.T) {
	cands := []model.Supplier{{Product: "Onions"}, {Product: "Tomatoes"}, {Product: "Onions"}, {Product: "Rice"}}
	assert.Equal(t, []string{"all", "Onions", "Tomatoes", "Rice"}, Commodities(cands))
	assert.Equal(t, []string{"all"}, Commodities(nil))
}
