// Package weather resolves the rain signal consumed by the commute
// evaluation. Provider failures never surface to the evaluation: the
// signal fails open to not-raining.
package weather

import (
	"context"
	"errors"
	"time"

	"github.com/wakeroute/wakeroute/internal/geo"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// CurrentConditions fetches forecast conditions for a grid cell.
	CurrentConditions(ctx context.Context, cell geo.GridCell) (*Observation, error)

	// Name returns the provider name for logging.
	Name() string
}

// Observation is the typed weather state for one grid cell.
type Observation struct {
	Cell geo.GridCell

	// Raining is true when precipitation is falling or the probability
	// of precipitation crosses the rain threshold.
	Raining bool

	// PrecipProbability is the forecast probability in percent (0-100),
	// -1 when the provider did not report it.
	PrecipProbability int

	// PrecipType is the raw precipitation category code, empty when not
	// reported.
	PrecipType string

	FetchedAt time.Time
}
