package service

import (
	"math"

	"recommend-service/internal/recommend/model"
)

// earthRadiusKm — средний радиус Земли.
const earthRadiusKm = 6371.0

// Distance returns the great-circle (haversine) distance between a and b in km.
// Out-of-range coordinates are not validated and may yield NaN.
func Distance(a, b model.Location) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
