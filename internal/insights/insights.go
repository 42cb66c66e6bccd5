// Package insights aggregates a vendor's orders into dashboard KPIs.
package insights

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	savingsRate  = 0.15
	recentLimit  = 5
	noSupplier   = "Unknown"
	noFavourite  = "N/A"
	groupProduct = "Group"
	groupNote    = "group"
)

// Amount is an order total sent either as a JSON number or a string.
type Amount struct {
	raw string
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &a.raw)
	}
	a.raw = string(b)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value())
}

// Value is the whole string as a number; blanks and garbage are 0.
func (a Amount) Value() float64 {
	s := strings.TrimSpace(a.raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func AmountOf(v float64) Amount { return Amount{raw: strconv.FormatFloat(v, 'f', -1, 64)} }

type Item struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity,omitempty"`
}

type Order struct {
	ID           string    `json:"id"`
	OrderNumber  string    `json:"orderNumber"`
	TotalAmount  Amount    `json:"totalAmount"`
	Status       string    `json:"status"`
	SupplierName string    `json:"supplierName"`
	Notes        string    `json:"notes"`
	Items        []Item    `json:"items"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Input is what the dashboard posts; GroupOrders is the number of group
// orders the vendor currently takes part in.
type Input struct {
	Orders      []Order `json:"orders"`
	GroupOrders int     `json:"groupOrders"`
}

type Insights struct {
	TotalOrders       int     `json:"totalOrders"`
	ActiveGroups      int     `json:"activeGroups"`
	TotalSpent        float64 `json:"totalSpent"`
	EstimatedSavings  float64 `json:"estimatedSavings"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	FavoriteSupplier  string  `json:"favoriteSupplier"`
	MonthlySpending   float64 `json:"monthlySpending"`
	RecentOrders      []Order `json:"recentOrders"`
}

// IsGroupOrder reports whether the order came through group buying: one
// of its items is a "Group" product, or it has items and its notes
// mention a group.
func IsGroupOrder(o Order) bool {
	for _, it := range o.Items {
		if strings.Contains(it.ProductName, groupProduct) || strings.Contains(o.Notes, groupNote) {
			return true
		}
	}
	return false
}

// Compute builds the dashboard figures. Orders are expected newest first,
// as the order history returns them; "now" decides the current month.
func Compute(in Input, now time.Time) Insights {
	out := Insights{
		TotalOrders:      len(in.Orders),
		ActiveGroups:     in.GroupOrders,
		FavoriteSupplier: noFavourite,
		RecentOrders:     []Order{},
	}
	if len(in.Orders) == 0 {
		return out
	}

	counts := map[string]int{}
	var seen []string
	for _, o := range in.Orders {
		amount := o.TotalAmount.Value()
		out.TotalSpent += amount
		if IsGroupOrder(o) {
			out.EstimatedSavings += amount * savingsRate
		}

		created := o.CreatedAt.In(now.Location())
		if !o.CreatedAt.IsZero() && created.Year() == now.Year() && created.Month() == now.Month() {
			out.MonthlySpending += amount
		}

		name := strings.TrimSpace(o.SupplierName)
		if name == "" {
			name = noSupplier
		}
		if counts[name] == 0 {
			seen = append(seen, name)
		}
		counts[name]++
	}

	out.AverageOrderValue = out.TotalSpent / float64(len(in.Orders))

	best := 0
	for _, name := range seen {
		if counts[name] > best {
			out.FavoriteSupplier, best = name, counts[name]
		}
	}

	n := len(in.Orders)
	if n > recentLimit {
		n = recentLimit
	}
	out.RecentOrders = append(out.RecentOrders, in.Orders[:n]...)
	return out
}
