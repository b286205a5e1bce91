package routing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geo"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the routing data provider. May be nil when route
	// display is disabled.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service fetches display polylines, tolerating provider absence and
// failure.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Polyline returns the route geometry, or nil when no provider is
// configured or the provider fails. Evaluations proceed either way.
func (s *Service) Polyline(ctx context.Context, start, end geo.Coordinate, mode eta.Mode) []geo.Coordinate {
	if s.provider == nil {
		return nil
	}
	coords, err := s.provider.Polyline(ctx, start, end, mode)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Str("mode", string(mode)).
			Msg("polyline unavailable")
		return nil
	}
	return coords
}
