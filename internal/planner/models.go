// Package planner runs the full commute evaluation pipeline: geocode,
// estimate, adjust, select, correct, schedule. One synchronous pass per
// request; every external signal is already resolved or failed open by
// the collaborating services.
package planner

import (
	"errors"
	"time"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/schedule"
	"github.com/wakeroute/wakeroute/internal/transit"
)

// Planner errors.
var (
	// ErrMissingEndpoint indicates a request without both endpoints.
	ErrMissingEndpoint = errors.New("start and end addresses are required")
)

// Request is one commute evaluation query.
type Request struct {
	// StartAddress and EndAddress are free-text addresses resolved by
	// the geocoding collaborator.
	StartAddress string
	EndAddress   string

	// TargetArrival is the local arrival deadline in HH:mm.
	TargetArrival string

	// Modes are the enabled transport modes. Must be non-empty.
	Modes []eta.Mode

	// UseCorrection applies the historical error correction to the
	// chosen mode.
	UseCorrection bool

	// Stop configures transit wait lookups. Optional.
	Stop transit.Stop

	// Schedule carries the caller margins and rollover policy.
	Schedule schedule.Config

	// AlarmLevels are progressive alarm offsets in minutes before wake
	// time. Defaults to 30/10/0.
	AlarmLevels []int

	// IncludePolyline requests display geometry for the chosen mode.
	IncludePolyline bool
}

// Result is the complete evaluation output. Derived, never persisted.
type Result struct {
	RouteKey string

	Start geo.Coordinate
	End   geo.Coordinate

	DistanceKm float64

	// Candidates holds every enabled mode with penalties applied.
	Candidates []eta.Candidate

	ChosenMode eta.Mode

	// BaseMinutes is the chosen mode's estimate with environmental
	// penalties, before historical correction.
	BaseMinutes int

	// CorrectedMinutes is BaseMinutes shifted by the historical mean
	// error (equal to BaseMinutes when correction is off or neutral).
	CorrectedMinutes int

	// WaitMinutes is the platform wait for the chosen mode.
	WaitMinutes int

	Raining   bool
	Penalties eta.Penalties

	Correction history.CorrectionStats

	Crossings []eta.Crossing
	Polyline  []geo.Coordinate

	Decision schedule.Decision

	GeneratedAt time.Time
}
