// Package route provides saved commute route management.
package route

import (
	"errors"
	"time"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// Repository errors.
var (
	ErrRouteNotFound = errors.New("route not found")
)

// Route represents a saved commute route. The address pair is stored as
// entered; geocoding happens at evaluation time.
type Route struct {
	ID     string
	UserID string
	Label  string

	StartAddress string
	EndAddress   string

	// TargetArrival is the local arrival deadline in HH:mm.
	TargetArrival string

	// Modes are the transport modes enabled for this route.
	Modes []eta.Mode

	UseCorrection bool

	PrepMinutes         int
	SafetyMarginMinutes int
	ExtraMarginMinutes  int

	// BusStationID and SubwayStation enable live wait lookups. Optional.
	BusStationID  *string
	SubwayStation *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
