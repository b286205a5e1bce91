// Package routing fetches display polylines for the chosen route. The
// polyline is presentation only; ETA math never depends on it, and a
// missing polyline never fails an evaluation.
package routing

import (
	"context"
	"errors"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geo"
)

// Routing errors.
var (
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	ErrNoRouteFound        = errors.New("no route found between the given points")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// Polyline returns the ordered coordinates of a route between two
	// points for the given mode.
	Polyline(ctx context.Context, start, end geo.Coordinate, mode eta.Mode) ([]geo.Coordinate, error)

	// Name returns the provider name for logging.
	Name() string
}
