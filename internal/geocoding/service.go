package geocoding

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/geo"
)

// DefaultCacheSize bounds the address cache. Addresses rarely move, so
// eviction is driven by capacity, not time.
const DefaultCacheSize = 256

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the upstream geocoder.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheSize bounds the LRU address cache (default: 256).
	CacheSize int
}

// Service resolves addresses through a bounded LRU cache in front of the
// provider. Cache capacity replaces process-lifetime memoization so a
// long-running server neither grows without bound nor pins stale entries
// forever.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cache    *lru.Cache[string, geo.Coordinate]
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) (*Service, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, geo.Coordinate](size)
	if err != nil {
		return nil, err
	}
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cache:    cache,
	}, nil
}

// Geocode resolves an address, serving repeated queries from the cache.
// Not-found results are not cached; a typo fixed upstream should resolve
// on the next query.
func (s *Service) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	if address == "" {
		return geo.Coordinate{}, ErrEmptyAddress
	}

	if coord, ok := s.cache.Get(address); ok {
		return coord, nil
	}

	coord, err := s.provider.Geocode(ctx, address)
	if err != nil {
		return geo.Coordinate{}, err
	}

	s.cache.Add(address, coord)
	return coord, nil
}

// CacheLen returns the number of cached addresses.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}
