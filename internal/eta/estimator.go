package eta

import (
	"github.com/wakeroute/wakeroute/internal/geo"
)

// BaselineMinutes estimates the travel time for a mode between two points
// from straight-line distance and the mode's average speed. Partial
// minutes truncate and the result is floored at one minute; it is a
// heuristic, not a routed path length.
func BaselineMinutes(mode Mode, start, end geo.Coordinate) int {
	km := geo.DistanceKm(start, end)
	minutes := int(km / mode.SpeedKmh() * 60)
	if minutes < 1 {
		return 1
	}
	return minutes
}
