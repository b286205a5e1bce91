package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/featureflags"
	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/geocoding"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/routing"
	"github.com/wakeroute/wakeroute/internal/schedule"
	"github.com/wakeroute/wakeroute/internal/transit"
	"github.com/wakeroute/wakeroute/internal/weather"
)

// ServiceConfig holds the planner dependencies.
type ServiceConfig struct {
	// Geocoder resolves free-text addresses. Required.
	Geocoder *geocoding.Service

	// Weather supplies rain observations (optional, fails open to dry).
	Weather *weather.Service

	// Transit supplies platform waits (optional, fails open to zero).
	Transit *transit.Service

	// Routing supplies display polylines (optional).
	Routing *routing.Service

	// History supplies the per-route correction stats (optional).
	History *history.Service

	// Flags carries the runtime kill switches (optional).
	Flags *featureflags.Service

	// Logger for evaluation traces.
	Logger zerolog.Logger

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service evaluates commute requests.
type Service struct {
	geocoder *geocoding.Service
	weather  *weather.Service
	transit  *transit.Service
	routing  *routing.Service
	history  *history.Service
	flags    *featureflags.Service
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a new planner service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		geocoder: cfg.Geocoder,
		weather:  cfg.Weather,
		transit:  cfg.Transit,
		routing:  cfg.Routing,
		history:  cfg.History,
		flags:    cfg.Flags,
		logger:   cfg.Logger.With().Str("component", "planner").Logger(),
		now:      now,
	}
}

// Evaluate runs one commute evaluation. Geocoding failures and invalid
// input surface as errors; every other degraded signal falls back to a
// conservative default and the evaluation still completes.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if req.StartAddress == "" || req.EndAddress == "" {
		return nil, ErrMissingEndpoint
	}
	modes := req.Modes
	if s.flags.IsSubwayModeDisabled(ctx) {
		modes = withoutMode(modes, eta.ModeSubway)
	}
	if len(modes) == 0 {
		return nil, eta.ErrNoModes
	}
	if _, _, err := schedule.ParseArrival(req.TargetArrival); err != nil {
		return nil, err
	}

	start, err := s.geocoder.Geocode(ctx, req.StartAddress)
	if err != nil {
		return nil, fmt.Errorf("geocode start: %w", err)
	}
	end, err := s.geocoder.Geocode(ctx, req.EndAddress)
	if err != nil {
		return nil, fmt.Errorf("geocode end: %w", err)
	}

	now := s.now()

	raining := false
	if s.weather != nil && !s.flags.IsWeatherPenaltyDisabled(ctx) {
		raining = s.weather.IsRaining(ctx, start)
	}
	penalties := eta.Penalties{
		WeatherMinutes: eta.WeatherPenaltyMinutes(raining),
		TrafficMinutes: eta.TrafficDelayMinutes(start, end, now),
		SignalMinutes:  eta.SignalPenaltyMinutes(eta.CrossingCount(start, end)),
	}

	candidates := buildCandidates(modes, start, end, penalties)
	best, err := eta.SelectBestMode(candidates)
	if err != nil {
		return nil, err
	}

	routeKey := RouteKey(req.StartAddress, req.EndAddress)

	stats := history.CorrectionStats{}
	corrected := best.Minutes
	if req.UseCorrection && s.history != nil && !s.flags.IsCorrectionDisabled(ctx) {
		stats = s.history.CorrectionStats(ctx, routeKey, best.Mode)
		corrected = history.ApplyCorrection(best.Minutes, stats)
	}

	wait := 0
	if s.transit != nil && !s.flags.IsTransitWaitDisabled(ctx) {
		wait = s.transit.WaitMinutes(ctx, best.Mode, req.Stop)
	}

	decision, err := schedule.Decide(req.TargetArrival, corrected, wait, penalties.WeatherMinutes, req.Schedule, now, req.AlarmLevels)
	if err != nil {
		return nil, err
	}

	var crossings []eta.Crossing
	if best.Mode.CrossesStreets() {
		crossings = eta.Crossings(start, end)
	}

	var line []geo.Coordinate
	if req.IncludePolyline && s.routing != nil {
		line = s.routing.Polyline(ctx, start, end, best.Mode)
	}

	s.logger.Debug().
		Str("route_key", routeKey).
		Str("mode", string(best.Mode)).
		Int("base_minutes", best.Minutes).
		Int("corrected_minutes", corrected).
		Int("wait_minutes", wait).
		Int("total_minutes", decision.TotalMinutes).
		Bool("raining", raining).
		Time("wake_at", decision.WakeAt).
		Msg("commute evaluated")

	return &Result{
		RouteKey:         routeKey,
		Start:            start,
		End:              end,
		DistanceKm:       geo.DistanceKm(start, end),
		Candidates:       candidates,
		ChosenMode:       best.Mode,
		BaseMinutes:      best.Minutes,
		CorrectedMinutes: corrected,
		WaitMinutes:      wait,
		Raining:          raining,
		Penalties:        penalties,
		Correction:       stats,
		Crossings:        crossings,
		Polyline:         line,
		Decision:         decision,
		GeneratedAt:      now,
	}, nil
}

func withoutMode(modes []eta.Mode, drop eta.Mode) []eta.Mode {
	var out []eta.Mode
	for _, m := range modes {
		if m != drop {
			out = append(out, m)
		}
	}
	return out
}

// buildCandidates estimates each requested mode with the penalties that
// apply to it. Walking and buses pay signal waits at crossings, buses
// additionally pay road traffic, subways pay neither. Input modes are
// deduplicated and ordered by selection priority.
func buildCandidates(modes []eta.Mode, start, end geo.Coordinate, p eta.Penalties) []eta.Candidate {
	requested := make(map[eta.Mode]bool, len(modes))
	for _, m := range modes {
		requested[m] = true
	}

	var candidates []eta.Candidate
	for _, m := range eta.AllModes() {
		if !requested[m] {
			continue
		}
		minutes := eta.BaselineMinutes(m, start, end)
		if m.CrossesStreets() {
			minutes += p.SignalMinutes
		}
		if m.RoadBound() {
			minutes += p.TrafficMinutes
		}
		candidates = append(candidates, eta.Candidate{Mode: m, Minutes: minutes})
	}
	return candidates
}
