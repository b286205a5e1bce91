package eta

import (
	"time"

	"github.com/wakeroute/wakeroute/internal/geo"
)

// Crossing heuristics. One pedestrian crossing is assumed per 600 m of
// straight-line distance, each with a 60 s worst-case signal wait.
const (
	crossingSpacingKm  = 0.6
	crossingMaxWaitSec = 60
)

// Traffic heuristics for road-bound modes.
const (
	trafficBaseShortMin = 3 // trips under 2 km
	trafficBaseLongMin  = 8
	trafficPeakExtraMin = 7
	trafficShortTripKm  = 2.0
)

// rainPenaltyMinutes is the flat surcharge applied when rain is expected.
const rainPenaltyMinutes = 5

// CrossingCount estimates the number of pedestrian signal crossings along
// the straight line between start and end. Zero for distances under 600 m.
func CrossingCount(start, end geo.Coordinate) int {
	return int(geo.DistanceKm(start, end) / crossingSpacingKm)
}

// SignalPenaltyMinutes converts a crossing count into extra minutes,
// assuming the worst-case wait at every crossing.
func SignalPenaltyMinutes(crossings int) int {
	if crossings <= 0 {
		return 0
	}
	return crossings * crossingMaxWaitSec / 60
}

// Crossing is an interpolated crossing marker for display, with the
// worst-case wait assumed at that point.
type Crossing struct {
	Point      geo.Coordinate
	MaxWaitSec int
}

// Crossings places CrossingCount markers evenly along the straight line
// between start and end. Display-only; the penalty math uses the count.
func Crossings(start, end geo.Coordinate) []Crossing {
	n := CrossingCount(start, end)
	if n == 0 {
		return nil
	}
	crossings := make([]Crossing, 0, n)
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n+1)
		crossings = append(crossings, Crossing{
			Point:      geo.Interpolate(start, end, f),
			MaxWaitSec: crossingMaxWaitSec,
		})
	}
	return crossings
}

// TrafficDelayMinutes estimates road congestion delay for the trip at the
// given local time. Short trips see less baseline congestion; the morning
// (07:00-09:00) and evening (17:00-19:00) peaks add a flat surcharge.
func TrafficDelayMinutes(start, end geo.Coordinate, now time.Time) int {
	delay := trafficBaseLongMin
	if geo.DistanceKm(start, end) < trafficShortTripKm {
		delay = trafficBaseShortMin
	}
	h := now.Hour()
	if (h >= 7 && h <= 9) || (h >= 17 && h <= 19) {
		delay += trafficPeakExtraMin
	}
	return delay
}

// WeatherPenaltyMinutes returns the flat rain surcharge. The rain signal
// is resolved by the weather collaborator; an unavailable provider must be
// passed in as not raining so that evaluation fails open.
func WeatherPenaltyMinutes(raining bool) int {
	if raining {
		return rainPenaltyMinutes
	}
	return 0
}
