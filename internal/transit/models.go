// Package transit resolves platform wait estimates for bus and subway
// trips. Like weather, the signal fails open: an absent or failing
// provider degrades to a fixed fallback wait, never an error.
package transit

import "context"

// Stop identifies the boarding point for a wait lookup. Either field may
// be empty when the caller has no stop configured.
type Stop struct {
	// BusStationID is the bus arrival API station identifier.
	BusStationID string

	// SubwayStation is the subway station name.
	SubwayStation string
}

// Provider defines the interface for transit arrival providers.
type Provider interface {
	// NextBusMinutes returns minutes until the next bus at the station.
	NextBusMinutes(ctx context.Context, stationID string) (int, error)

	// NextSubwayMinutes returns minutes until the next train at the
	// station.
	NextSubwayMinutes(ctx context.Context, station string) (int, error)

	// Name returns the provider name for logging.
	Name() string
}
