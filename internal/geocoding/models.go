// Package geocoding resolves free-text addresses into coordinates.
package geocoding

import (
	"context"
	"errors"

	"github.com/wakeroute/wakeroute/internal/geo"
)

// Geocoding errors.
var (
	// ErrAddressNotFound indicates the provider returned no match.
	ErrAddressNotFound = errors.New("address not found")
	// ErrEmptyAddress indicates a blank query string.
	ErrEmptyAddress = errors.New("address is empty")
	// ErrProviderUnavailable indicates the provider is down or rejecting.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Provider defines the interface for geocoding providers.
type Provider interface {
	// Geocode resolves an address to a coordinate. Returns
	// ErrAddressNotFound when the provider has no match.
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)

	// Name returns the provider name for logging.
	Name() string
}
