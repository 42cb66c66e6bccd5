package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"recommend-service/internal/recommend/model"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Location
		want float64
		tol  float64
	}{
		{"same point", model.Location{Latitude: 19.07, Longitude: 72.87}, model.Location{Latitude: 19.07, Longitude: 72.87}, 0, 0},
		{"one degree of latitude", model.Location{}, model.Location{Latitude: 1}, 6371 * math.Pi / 180, 1e-9},
		{"mumbai to pune", model.Location{Latitude: 19.0760, Longitude: 72.8777}, model.Location{Latitude: 18.5204, Longitude: 73.8567}, 120, 2},
		{"antipodes", model.Location{}, model.Location{Longitude: 180}, 6371 * math.Pi, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.tol)
			assert.InDelta(t, got, Distance(tt.b, tt.a), 1e-9)
		})
	}
}

func TestDistanceInvalidCoordinatesNotValidated(t *testing.T) {
	got := Distance(model.Location{Latitude: math.NaN()}, model.Location{})
	assert.True(t, math.IsNaN(got))
}
