// Package geo provides the geographic primitives used across WakeRoute:
// great-circle distance, straight-line interpolation and the weather grid
// projection.
package geo

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance math.
const EarthRadiusKm = 6371.0

// Coordinate is an immutable WGS84 (latitude, longitude) pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceKm returns the great-circle distance between a and b in
// kilometers. Symmetric, and zero when a == b.
func DistanceKm(a, b Coordinate) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// Interpolate returns the point at fraction f along the straight line from
// a to b, with f in [0,1]. Used to place crossing markers for display; not
// suitable for long spans where great-circle curvature matters.
func Interpolate(a, b Coordinate, f float64) Coordinate {
	if f <= 0 {
		return a
	}
	if f >= 1 {
		return b
	}
	return Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lon: a.Lon + (b.Lon-a.Lon)*f,
	}
}

// Midpoint returns the linear midpoint between a and b.
func Midpoint(a, b Coordinate) Coordinate {
	return Interpolate(a, b, 0.5)
}
