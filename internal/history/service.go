package history

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// DefaultStatsLimit bounds how many recent records feed the correction.
const DefaultStatsLimit = 200

// trendMinSamples is the minimum history needed to fit a linear trend.
const trendMinSamples = 10

// ServiceConfig holds configuration for the history service.
type ServiceConfig struct {
	// Repository is the outcome log.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// StatsLimit caps the records per correction query (default: 200).
	StatsLimit int
}

// Service derives prediction corrections from the outcome log. Reads
// degrade to the neutral correction on any storage failure; only writes
// surface errors, and those are recoverable (the observation is lost, the
// session is not).
type Service struct {
	repo       Repository
	logger     zerolog.Logger
	statsLimit int
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) *Service {
	statsLimit := cfg.StatsLimit
	if statsLimit <= 0 {
		statsLimit = DefaultStatsLimit
	}
	return &Service{
		repo:       cfg.Repository,
		logger:     cfg.Logger,
		statsLimit: statsLimit,
	}
}

// RecordOutcome appends a completed trip outcome. Negative minute inputs
// are clamped to zero; no other validation applies.
func (s *Service) RecordOutcome(ctx context.Context, routeKey string, mode eta.Mode, predicted, actual int) (*Record, error) {
	if predicted < 0 {
		predicted = 0
	}
	if actual < 0 {
		actual = 0
	}

	rec := &Record{
		RouteKey:  routeKey,
		Mode:      mode,
		Predicted: predicted,
		Actual:    actual,
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append outcome: %w", err)
	}

	s.logger.Debug().
		Str("route_key", routeKey).
		Str("mode", string(mode)).
		Int("predicted", predicted).
		Int("actual", actual).
		Msg("recorded trip outcome")

	return rec, nil
}

// CorrectionStats computes the mean and sample standard deviation of
// (actual - predicted) over the most recent records for the pair. An empty
// bucket or a failed read yields the neutral stats; it never blocks the
// caller.
func (s *Service) CorrectionStats(ctx context.Context, routeKey string, mode eta.Mode) CorrectionStats {
	records, err := s.repo.Recent(ctx, routeKey, mode, s.statsLimit)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("route_key", routeKey).
			Str("mode", string(mode)).
			Msg("history read failed, using neutral correction")
		return CorrectionStats{}
	}
	if len(records) == 0 {
		return CorrectionStats{}
	}

	var sum float64
	for _, rec := range records {
		sum += float64(rec.Actual - rec.Predicted)
	}
	mean := sum / float64(len(records))

	var sq float64
	for _, rec := range records {
		d := float64(rec.Actual-rec.Predicted) - mean
		sq += d * d
	}
	std := 0.0
	if len(records) > 1 {
		std = math.Sqrt(sq / float64(len(records)-1))
	}

	return CorrectionStats{
		SampleCount: len(records),
		MeanError:   mean,
		StdError:    std,
	}
}

// ApplyCorrection shifts a prediction by the historical mean error. The
// corrected estimate never drops below one minute, however pessimistic the
// history.
func ApplyCorrection(predicted int, stats CorrectionStats) int {
	corrected := int(math.Round(float64(predicted) + stats.MeanError))
	if corrected < 1 {
		return 1
	}
	return corrected
}

// FitLinearTrend fits actual = slope*predicted + intercept by least
// squares over the full (route, mode) history. Requires at least ten
// records; callers fall back to the mean correction on
// ErrInsufficientData. A degenerate history with constant predictions
// cannot determine a slope and is also reported as insufficient.
func (s *Service) FitLinearTrend(ctx context.Context, routeKey string, mode eta.Mode) (Trend, error) {
	records, err := s.repo.All(ctx, routeKey, mode)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("route_key", routeKey).
			Str("mode", string(mode)).
			Msg("history read failed, trend unavailable")
		return Trend{}, ErrInsufficientData
	}
	if len(records) < trendMinSamples {
		return Trend{}, ErrInsufficientData
	}

	n := float64(len(records))
	var sumX, sumY float64
	for _, rec := range records {
		sumX += float64(rec.Predicted)
		sumY += float64(rec.Actual)
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for _, rec := range records {
		dx := float64(rec.Predicted) - meanX
		sxx += dx * dx
		sxy += dx * (float64(rec.Actual) - meanY)
	}
	if sxx == 0 {
		return Trend{}, ErrInsufficientData
	}

	slope := sxy / sxx
	return Trend{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		Samples:   len(records),
	}, nil
}
