package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/history"
)

const routeKey = "rk_test"

func newService(repo history.Repository) *history.Service {
	return history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
}

// failingRepository simulates a broken store.
type failingRepository struct{}

func (failingRepository) Append(context.Context, *history.Record) error {
	return errors.New("disk full")
}

func (failingRepository) Recent(context.Context, string, eta.Mode, int) ([]history.Record, error) {
	return nil, errors.New("read error")
}

func (failingRepository) All(context.Context, string, eta.Mode) ([]history.Record, error) {
	return nil, errors.New("read error")
}

func TestRecordOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps negative inputs", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		rec, err := svc.RecordOutcome(ctx, routeKey, eta.ModeBus, -5, -1)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Predicted)
		assert.Equal(t, 0, rec.Actual)
		assert.False(t, rec.RecordedAt.IsZero())
	})

	t.Run("write failure is surfaced", func(t *testing.T) {
		svc := newService(failingRepository{})
		_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeBus, 10, 12)
		assert.Error(t, err)
	})

	t.Run("read-your-own-write", func(t *testing.T) {
		repo := history.NewInMemoryRepository()
		svc := history.NewService(history.ServiceConfig{
			Repository: repo,
			Logger:     zerolog.Nop(),
			StatsLimit: 1,
		})

		_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeSubway, 14, 21)
		require.NoError(t, err)

		stats := svc.CorrectionStats(ctx, routeKey, eta.ModeSubway)
		assert.Equal(t, 1, stats.SampleCount)
		assert.Equal(t, 7.0, stats.MeanError)
	})
}

func TestCorrectionStats(t *testing.T) {
	ctx := context.Background()

	t.Run("empty log is neutral", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		stats := svc.CorrectionStats(ctx, routeKey, eta.ModeWalk)
		assert.True(t, stats.Neutral())
		assert.Zero(t, stats.MeanError)
		assert.Zero(t, stats.StdError)
	})

	t.Run("read failure degrades to neutral", func(t *testing.T) {
		svc := newService(failingRepository{})
		stats := svc.CorrectionStats(ctx, routeKey, eta.ModeWalk)
		assert.True(t, stats.Neutral())
	})

	t.Run("mean and sample stddev", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		// Errors: +2, +4, +6 -> mean 4, sample stddev 2.
		for _, actual := range []int{12, 14, 16} {
			_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeBus, 10, actual)
			require.NoError(t, err)
		}
		stats := svc.CorrectionStats(ctx, routeKey, eta.ModeBus)
		assert.Equal(t, 3, stats.SampleCount)
		assert.InDelta(t, 4.0, stats.MeanError, 1e-9)
		assert.InDelta(t, 2.0, stats.StdError, 1e-9)
	})

	t.Run("filters by mode and route", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeBus, 10, 20)
		require.NoError(t, err)
		_, err = svc.RecordOutcome(ctx, "other", eta.ModeSubway, 10, 20)
		require.NoError(t, err)

		stats := svc.CorrectionStats(ctx, routeKey, eta.ModeSubway)
		assert.True(t, stats.Neutral())
	})

	t.Run("respects recency limit", func(t *testing.T) {
		repo := history.NewInMemoryRepository()
		svc := history.NewService(history.ServiceConfig{
			Repository: repo,
			Logger:     zerolog.Nop(),
			StatsLimit: 2,
		})
		// Old record with +10 error, then two with +1.
		for _, actual := range []int{20, 11, 11} {
			_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeBus, 10, actual)
			require.NoError(t, err)
		}
		stats := svc.CorrectionStats(ctx, routeKey, eta.ModeBus)
		assert.Equal(t, 2, stats.SampleCount)
		assert.InDelta(t, 1.0, stats.MeanError, 1e-9)
	})
}

func TestApplyCorrection(t *testing.T) {
	t.Run("shifts by mean error", func(t *testing.T) {
		got := history.ApplyCorrection(14, history.CorrectionStats{SampleCount: 5, MeanError: 5})
		assert.Equal(t, 19, got)
	})

	t.Run("rounds to nearest minute", func(t *testing.T) {
		got := history.ApplyCorrection(14, history.CorrectionStats{SampleCount: 5, MeanError: 2.5})
		assert.Equal(t, 17, got)
	})

	t.Run("never below one minute", func(t *testing.T) {
		got := history.ApplyCorrection(5, history.CorrectionStats{SampleCount: 5, MeanError: -30})
		assert.Equal(t, 1, got)
	})

	t.Run("neutral stats are identity", func(t *testing.T) {
		assert.Equal(t, 14, history.ApplyCorrection(14, history.CorrectionStats{}))
	})
}

func TestFitLinearTrend(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient data", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		for i := 0; i < 9; i++ {
			_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeBus, 10+i, 12+i)
			require.NoError(t, err)
		}
		_, err := svc.FitLinearTrend(ctx, routeKey, eta.ModeBus)
		assert.ErrorIs(t, err, history.ErrInsufficientData)
	})

	t.Run("read failure reports insufficient data", func(t *testing.T) {
		svc := newService(failingRepository{})
		_, err := svc.FitLinearTrend(ctx, routeKey, eta.ModeBus)
		assert.ErrorIs(t, err, history.ErrInsufficientData)
	})

	t.Run("recovers a linear relationship", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		// actual = 1.2*predicted + 3, exactly.
		for i := 0; i < 12; i++ {
			predicted := 10 + i
			actual := int(1.2*float64(predicted)) + 3
			_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeSubway, predicted, actual)
			require.NoError(t, err)
		}
		trend, err := svc.FitLinearTrend(ctx, routeKey, eta.ModeSubway)
		require.NoError(t, err)
		assert.InDelta(t, 1.2, trend.Slope, 0.05)
		assert.InDelta(t, 3.0, trend.Intercept, 1.0)
		assert.Equal(t, 12, trend.Samples)
	})

	t.Run("constant predictions cannot fit", func(t *testing.T) {
		svc := newService(history.NewInMemoryRepository())
		for i := 0; i < 12; i++ {
			_, err := svc.RecordOutcome(ctx, routeKey, eta.ModeWalk, 10, 12)
			require.NoError(t, err)
		}
		_, err := svc.FitLinearTrend(ctx, routeKey, eta.ModeWalk)
		assert.ErrorIs(t, err, history.ErrInsufficientData)
	})
}
