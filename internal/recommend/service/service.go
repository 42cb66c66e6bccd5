package service

import (
	"recommend-service/internal/recommend/model"
)

// Request bundles the four inputs of a ranking pass.
type Request struct {
	Suppliers []model.Supplier
	Location  *model.Location
	Commodity string
	Sort      model.SortMode
	Limit     int // 0 means model.DefaultTopN
}

// Result is one ranking pass: the surfaced top entries plus how many
// suppliers survived the commodity filter.
type Result struct {
	Top     []model.Ranked
	Matched int
}

// Recommend runs filter → score → best-price tagging → sort → top N.
// It is a pure function of its inputs; the supplier slice is not modified.
func Recommend(req Request) Result {
	commodity := req.Commodity
	if commodity == "" {
		commodity = model.CommodityAll
	}
	limit := req.Limit
	if limit <= 0 {
		limit = model.DefaultTopN
	}

	filtered := FilterByCommodity(req.Suppliers, commodity)
	if len(filtered) == 0 {
		return Result{Top: []model.Ranked{}}
	}

	scored := TagBestPrice(ScoreAll(filtered, req.Location))
	ordered := Rank(scored, req.Sort)
	return Result{Top: Top(ordered, limit), Matched: len(ordered)}
}

// Commodities lists "all" followed by the distinct product labels in the
// order they first appear.
func Commodities(cands []model.Supplier) []string {
	out := []string{model.CommodityAll}
	seen := map[string]struct{}{model.CommodityAll: {}}
	for _, c := range cands {
		if _, ok := seen[c.Product]; ok {
			continue
		}
		seen[c.Product] = struct{}{}
		out = append(out, c.Product)
	}
	return out
}
