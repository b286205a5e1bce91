package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wakeroute/wakeroute/internal/geo"
)

var (
	gwanghwamun = geo.Coordinate{Lat: 37.5759, Lon: 126.9769}
	gangnam     = geo.Coordinate{Lat: 37.4979, Lon: 127.0276}
)

func TestDistanceKm(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, geo.DistanceKm(gwanghwamun, gangnam), geo.DistanceKm(gangnam, gwanghwamun), 1e-9)
	})

	t.Run("zero for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, geo.DistanceKm(gwanghwamun, gwanghwamun))
	})

	t.Run("known pair", func(t *testing.T) {
		// Gwanghwamun to Gangnam is roughly 9.6 km straight-line.
		d := geo.DistanceKm(gwanghwamun, gangnam)
		assert.InDelta(t, 9.6, d, 0.2)
	})

	t.Run("antimeridian", func(t *testing.T) {
		a := geo.Coordinate{Lat: 0, Lon: 179.9}
		b := geo.Coordinate{Lat: 0, Lon: -179.9}
		// 0.2 degrees of longitude at the equator, not near-circumference.
		assert.InDelta(t, 22.2, geo.DistanceKm(a, b), 0.5)
	})
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, gwanghwamun.Valid())
	assert.False(t, geo.Coordinate{Lat: 91, Lon: 0}.Valid())
	assert.False(t, geo.Coordinate{Lat: 0, Lon: -181}.Valid())
}

func TestInterpolate(t *testing.T) {
	mid := geo.Midpoint(gwanghwamun, gangnam)
	assert.InDelta(t, (gwanghwamun.Lat+gangnam.Lat)/2, mid.Lat, 1e-9)
	assert.InDelta(t, (gwanghwamun.Lon+gangnam.Lon)/2, mid.Lon, 1e-9)

	assert.Equal(t, gwanghwamun, geo.Interpolate(gwanghwamun, gangnam, -0.5))
	assert.Equal(t, gangnam, geo.Interpolate(gwanghwamun, gangnam, 1.5))
}

func TestWeatherGridCell(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := geo.WeatherGridCell(gwanghwamun)
		b := geo.WeatherGridCell(gwanghwamun)
		assert.Equal(t, a, b)
	})

	t.Run("seoul city hall", func(t *testing.T) {
		// Published reference cell for central Seoul is (60, 127).
		cell := geo.WeatherGridCell(geo.Coordinate{Lat: 37.5663, Lon: 126.9779})
		assert.Equal(t, 60, cell.NX)
		assert.Equal(t, 127, cell.NY)
	})

	t.Run("distinct cells for distant points", func(t *testing.T) {
		assert.NotEqual(t,
			geo.WeatherGridCell(geo.Coordinate{Lat: 35.1796, Lon: 129.0756}),
			geo.WeatherGridCell(gwanghwamun))
	})

	t.Run("longitude wraparound normalizes", func(t *testing.T) {
		// A longitude on the far side of the antimeridian still projects
		// without overflow.
		cell := geo.WeatherGridCell(geo.Coordinate{Lat: 38.0, Lon: -170.0})
		same := geo.WeatherGridCell(geo.Coordinate{Lat: 38.0, Lon: -170.0})
		assert.Equal(t, cell, same)
	})
}
