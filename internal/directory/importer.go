package directory

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"recommend-service/internal/recommend/model"
	"recommend-service/internal/utils"
)

// Mapping maps a supplier field to header aliases separated by '|'.
// Headers compare case-insensitively, ignoring spaces and punctuation,
// and tolerate a typo or two in longer names.
type Mapping map[string]string

// DefaultMapping covers the headers seen in supplier exports.
var DefaultMapping = Mapping{
	"id":             "id|supplier id|code",
	"groupId":        "group id|group",
	"name":           "name|supplier|supplier name|company|vendor",
	"product":        "product|commodity|item|product name",
	"price":          "price|display price|price label",
	"originalPrice":  "original price|price value|unit price|rate|cost",
	"location":       "location|address|city|area",
	"latitude":       "latitude|lat",
	"longitude":      "longitude|lon|lng|long",
	"rating":         "rating|stars",
	"deliveryRadius": "delivery radius|radius|radius km",
	"deliveryCharge": "delivery charge|delivery fee|shipping",
	"image":          "image|image url|photo",
	"verified":       "verified|is verified",
	"memberYears":    "member years|years|member since years",
}

// FromRecords converts spreadsheet rows into suppliers. Rows with
// neither a name nor a product are skipped and counted.
func FromRecords(recs []map[string]string, m Mapping) (out []model.Supplier, skipped int) {
	if m == nil {
		m = DefaultMapping
	}
	seen := map[string]bool{}
	var headers []string
	for _, r := range recs {
		for h := range r {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
	}
	sort.Strings(headers)
	cols := m.resolve(headers)
	cell := func(r map[string]string, field string) string {
		h, ok := cols[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(r[h])
	}
	num := func(r map[string]string, field string) float64 {
		v, _ := utils.ParseNumber(cell(r, field))
		return v
	}

	out = make([]model.Supplier, 0, len(recs))
	for _, r := range recs {
		sp := model.Supplier{
			ID:             cell(r, "id"),
			GroupID:        cell(r, "groupId"),
			Name:           cell(r, "name"),
			Product:        cell(r, "product"),
			Price:          cell(r, "price"),
			Location:       cell(r, "location"),
			Latitude:       num(r, "latitude"),
			Longitude:      num(r, "longitude"),
			Rating:         num(r, "rating"),
			DeliveryRadius: num(r, "deliveryRadius"),
			DeliveryCharge: num(r, "deliveryCharge"),
			Image:          cell(r, "image"),
		}
		if sp.Name == "" && sp.Product == "" {
			skipped++
			continue
		}
		if sp.ID == "" {
			sp.ID = uuid.NewString()
		}
		if raw := cell(r, "originalPrice"); raw != "" {
			sp.OriginalPrice = model.TextPrice(raw)
			if sp.Price == "" {
				sp.Price = raw
			}
		} else if sp.Price != "" {
			sp.OriginalPrice = model.TextPrice(sp.Price)
		}
		if v, ok := utils.ParseBool(cell(r, "verified")); ok {
			sp.Verified = &v
		}
		if raw := cell(r, "memberYears"); raw != "" {
			if y, err := strconv.Atoi(raw); err == nil {
				sp.MemberYears = &y
			} else if f, ok := utils.ParseNumber(raw); ok {
				y := int(f)
				sp.MemberYears = &y
			}
		}
		out = append(out, sp)
	}
	return out, skipped
}
