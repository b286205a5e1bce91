// Package eta provides the baseline travel-time estimators, the
// environmental penalty heuristics and the mode selector that together
// produce a per-mode commute estimate from a coordinate pair.
package eta

import "errors"

// Estimation errors.
var (
	// ErrNoModes indicates the caller enabled no transport mode at all.
	// This is a configuration error, not a degraded signal.
	ErrNoModes = errors.New("no transport mode enabled")
	// ErrUnknownMode indicates a mode string outside the supported set.
	ErrUnknownMode = errors.New("unknown transport mode")
)

// Mode is a transport mode evaluated end-to-end for the whole trip.
type Mode string

const (
	ModeWalk   Mode = "walk"
	ModeBus    Mode = "bus"
	ModeSubway Mode = "subway"
)

// Average speeds in km/h. These are tuned heuristics over straight-line
// distance, not routed path speeds.
const (
	walkSpeedKmh   = 4.5
	busSpeedKmh    = 25.0
	subwaySpeedKmh = 40.0
)

// selectionPriority breaks exact ties in mode selection. Lower wins.
var selectionPriority = map[Mode]int{
	ModeWalk:   0,
	ModeSubway: 1,
	ModeBus:    2,
}

// AllModes lists every supported mode in selection priority order.
func AllModes() []Mode {
	return []Mode{ModeWalk, ModeSubway, ModeBus}
}

// ParseMode converts a wire string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWalk, ModeBus, ModeSubway:
		return Mode(s), nil
	}
	return "", ErrUnknownMode
}

// SpeedKmh returns the characteristic average speed for the mode.
func (m Mode) SpeedKmh() float64 {
	switch m {
	case ModeWalk:
		return walkSpeedKmh
	case ModeBus:
		return busSpeedKmh
	case ModeSubway:
		return subwaySpeedKmh
	}
	return walkSpeedKmh
}

// CrossesStreets reports whether the mode traverses pedestrian signal
// crossings at street level. Subway trips run below grade and accrue no
// signal penalty.
func (m Mode) CrossesStreets() bool {
	return m == ModeWalk || m == ModeBus
}

// RoadBound reports whether the mode is subject to road traffic delay.
func (m Mode) RoadBound() bool {
	return m == ModeBus
}

// Penalties is the per-query breakdown of additive minute penalties.
// Computed fresh on every evaluation and never persisted.
type Penalties struct {
	WeatherMinutes int
	TrafficMinutes int
	SignalMinutes  int
}

// Candidate pairs a mode with its estimated minutes, penalties included.
type Candidate struct {
	Mode    Mode
	Minutes int
}
