package handler

import (
	"math"

	"recommend-service/internal/recommend/model"
)

// Stars is the 5-star rendering of a rating.
type Stars struct {
	Value float64 `json:"value"`
	Full  int     `json:"full"`
	Half  int     `json:"half"`
	Empty int     `json:"empty"`
}

// DisplayRating clamps a raw rating to [0,5] for display (NaN shows as 0)
// and splits it into full, half and empty stars. Ranking always uses the
// raw value.
func DisplayRating(r float64) Stars {
	switch {
	case math.IsNaN(r) || r < 0:
		r = 0
	case r > 5:
		r = 5
	}
	full := int(math.Floor(r))
	half := 0
	if r-float64(full) >= 0.5 {
		half = 1
	}
	return Stars{Value: r, Full: full, Half: half, Empty: 5 - full - half}
}

// item is one recommendation as sent to clients. Computed values that are
// not finite go out as null.
type item struct {
	model.Supplier
	Rank       int         `json:"rank"`
	DistanceKm *float64    `json:"distanceKm"`
	PriceValue *float64    `json:"priceValue"`
	Score      *float64    `json:"score"`
	Tags       []model.Tag `json:"tags"`
	Stars      Stars       `json:"stars"`
}

type recommendResponse struct {
	Recommendations []item          `json:"recommendations"`
	Commodities     []string        `json:"commodities"`
	Total           int             `json:"total"`
	Empty           bool            `json:"empty"`
	Commodity       string          `json:"commodity"`
	Sort            model.SortMode  `json:"sort"`
	Location        *model.Location `json:"location,omitempty"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func toItems(ranked []model.Ranked) []item {
	out := make([]item, 0, len(ranked))
	for i, r := range ranked {
		tags := r.Tags
		if tags == nil {
			tags = []model.Tag{}
		}
		out = append(out, item{
			Supplier:   r.Supplier,
			Rank:       i + 1,
			DistanceKm: finite(r.DistanceKm),
			PriceValue: finite(r.PriceValue),
			Score:      finite(r.Score),
			Tags:       tags,
			Stars:      DisplayRating(r.Rating),
		})
	}
	return out
}
