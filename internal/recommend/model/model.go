package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CommodityAll — фильтр, пропускающий всех поставщиков.
const CommodityAll = "all"

// DefaultTopN is how many ranked suppliers are surfaced for display.
const DefaultTopN = 3

type Supplier struct {
	ID             string     `json:"id"`
	GroupID        string     `json:"groupId,omitempty"`
	Name           string     `json:"name"`
	Product        string     `json:"product"`               // commodity label
	Price          string     `json:"price"`                 // display string, e.g. "₹20/kg"
	OriginalPrice  PriceValue `json:"originalPrice"`         // number or string, as received
	Location       string     `json:"location"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Rating         float64    `json:"rating"`
	DeliveryRadius float64    `json:"deliveryRadius"`
	DeliveryCharge float64    `json:"deliveryCharge"`
	Image          string     `json:"image"`
	Verified       *bool      `json:"verified,omitempty"`
	MemberYears    *int       `json:"memberYears,omitempty"`
}

// Location is a buyer position. A nil *Location means "unknown".
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

type Tag string

const (
	TagTopRated  Tag = "top rated"
	TagNearest   Tag = "nearest"
	TagBestPrice Tag = "best price"
)

type SortMode string

const (
	SortSmart    SortMode = "smart"
	SortPrice    SortMode = "price"
	SortDistance SortMode = "distance"
	SortRating   SortMode = "rating"
)

// ParseSortMode maps user input onto a sort mode; anything unknown is smart.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPrice:
		return SortPrice
	case SortDistance:
		return SortDistance
	case SortRating:
		return SortRating
	default:
		return SortSmart
	}
}

// Ranked is a supplier together with the values computed for one ranking pass.
type Ranked struct {
	Supplier
	DistanceKm float64 `json:"distanceKm"`
	PriceValue float64 `json:"priceValue"`
	Score      float64 `json:"score"`
	Tags       []Tag   `json:"tags"`
}

func (r Ranked) HasTag(t Tag) bool {
	for _, x := range r.Tags {
		if x == t {
			return true
		}
	}
	return false
}

// PriceValue keeps the original price the way it arrived: either a JSON
// number or a string (spreadsheets and older clients send strings).
// The zero value is an empty string, i.e. "no price".
type PriceValue struct {
	Text     string
	Number   float64
	IsNumber bool
}

func NumberPrice(v float64) PriceValue { return PriceValue{Number: v, IsNumber: true} }
func TextPrice(s string) PriceValue    { return PriceValue{Text: s} }

func (p PriceValue) MarshalJSON() ([]byte, error) {
	if p.IsNumber {
		if math.IsNaN(p.Number) || math.IsInf(p.Number, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(p.Number, 'f', -1, 64)), nil
	}
	return json.Marshal(p.Text)
}

func (p *PriceValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*p = PriceValue{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = TextPrice(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*p = NumberPrice(f)
		return nil
	}
}
