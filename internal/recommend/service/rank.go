package service

import (
	"math"
	"sort"

	"recommend-service/internal/recommend/model"
)

// Rank orders scored suppliers in place for the given mode and returns them.
// The sort is stable, so ties keep their input order. NaN keys go last.
func Rank(scored []model.Ranked, mode model.SortMode) []model.Ranked {
	var less func(a, b model.Ranked) bool
	switch mode {
	case model.SortPrice:
		less = func(a, b model.Ranked) bool { return ascending(a.PriceValue, b.PriceValue) }
	case model.SortDistance:
		less = func(a, b model.Ranked) bool { return ascending(a.DistanceKm, b.DistanceKm) }
	case model.SortRating:
		less = func(a, b model.Ranked) bool { return descending(a.Rating, b.Rating) }
	default:
		less = func(a, b model.Ranked) bool { return descending(a.Score, b.Score) }
	}
	sort.SliceStable(scored, func(i, j int) bool { return less(scored[i], scored[j]) })
	return scored
}

func ascending(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

func descending(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

// Top returns the first n ranked suppliers (all of them if there are fewer).
// The result is never nil.
func Top(ordered []model.Ranked, n int) []model.Ranked {
	if n < 0 {
		n = 0
	}
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	out := make([]model.Ranked, len(ordered))
	copy(out, ordered)
	return out
}
