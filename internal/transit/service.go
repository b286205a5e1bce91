package transit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// Fallback waits in minutes. The unconfigured values reflect typical
// urban headways; the degraded values are deliberately pessimistic so a
// provider outage never makes the schedule optimistic.
const (
	busWaitUnconfigured    = 5
	busWaitDegraded        = 10
	subwayWaitUnconfigured = 3
	subwayWaitDegraded     = 5
)

// ServiceConfig holds configuration for the transit service.
type ServiceConfig struct {
	// Provider is the arrival data provider. May be nil.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service resolves platform waits with fail-open fallbacks.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new transit service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// WaitMinutes returns the expected platform wait for the mode. Walking
// has no platform; bus and subway fall back to fixed waits when the
// provider is absent, unconfigured for the stop, or failing.
func (s *Service) WaitMinutes(ctx context.Context, mode eta.Mode, stop Stop) int {
	switch mode {
	case eta.ModeBus:
		return s.busWait(ctx, stop.BusStationID)
	case eta.ModeSubway:
		return s.subwayWait(ctx, stop.SubwayStation)
	default:
		return 0
	}
}

func (s *Service) busWait(ctx context.Context, stationID string) int {
	if s.provider == nil || stationID == "" {
		return busWaitUnconfigured
	}
	minutes, err := s.provider.NextBusMinutes(ctx, stationID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("station_id", stationID).
			Msg("bus arrivals unavailable, using fallback wait")
		return busWaitDegraded
	}
	if minutes < 0 {
		minutes = 0
	}
	return minutes
}

func (s *Service) subwayWait(ctx context.Context, station string) int {
	if s.provider == nil || station == "" {
		return subwayWaitUnconfigured
	}
	minutes, err := s.provider.NextSubwayMinutes(ctx, station)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("station", station).
			Msg("subway arrivals unavailable, using fallback wait")
		return subwayWaitDegraded
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
