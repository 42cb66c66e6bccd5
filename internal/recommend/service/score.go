package service

import (
	"math"

	"recommend-service/internal/recommend/model"
)

// Weights of the composite score. They are a fixed heuristic and are not
// normalized against each other.
const (
	ratingWeight    = 20.0
	pricePenalty    = 0.5
	distancePenalty = 2.0

	topRatedMin = 4.5
	nearestKm   = 5.0
)

// FilterByCommodity keeps suppliers whose product equals filter exactly.
// CommodityAll returns the input unchanged.
func FilterByCommodity(cands []model.Supplier, filter string) []model.Supplier {
	if filter == model.CommodityAll {
		return cands
	}
	out := make([]model.Supplier, 0, len(cands))
	for _, c := range cands {
		if c.Product == filter {
			out = append(out, c)
		}
	}
	return out
}

// Score computes distance, price value, composite score and the per-candidate
// tags for one supplier. loc may be nil.
func Score(c model.Supplier, loc *model.Location) model.Ranked {
	r := model.Ranked{
		Supplier:   c,
		PriceValue: PriceValue(c.OriginalPrice),
		Tags:       make([]model.Tag, 0, 3),
	}
	if loc != nil {
		r.DistanceKm = Distance(*loc, model.Location{Latitude: c.Latitude, Longitude: c.Longitude})
	}

	r.Score = c.Rating * ratingWeight
	r.Score -= r.PriceValue * pricePenalty
	if loc != nil {
		r.Score -= r.DistanceKm * distancePenalty
	}

	if c.Rating >= topRatedMin {
		r.Tags = append(r.Tags, model.TagTopRated)
	}
	if loc != nil && r.DistanceKm < nearestKm {
		r.Tags = append(r.Tags, model.TagNearest)
	}
	return r
}

// ScoreAll scores every candidate against the same buyer location.
func ScoreAll(cands []model.Supplier, loc *model.Location) []model.Ranked {
	out := make([]model.Ranked, 0, len(cands))
	for _, c := range cands {
		out = append(out, Score(c, loc))
	}
	return out
}

// TagBestPrice tags every candidate sitting exactly at the minimum price
// value. NaN prices never take part in the minimum and never get the tag.
func TagBestPrice(scored []model.Ranked) []model.Ranked {
	minPrice, found := 0.0, false
	for _, r := range scored {
		if math.IsNaN(r.PriceValue) {
			continue
		}
		if !found || r.PriceValue < minPrice {
			minPrice, found = r.PriceValue, true
		}
	}
	if !found {
		return scored
	}
	for i := range scored {
		if scored[i].PriceValue == minPrice {
			scored[i].Tags = append(scored[i].Tags, model.TagBestPrice)
		}
	}
	return scored
}
