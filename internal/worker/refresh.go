package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/route"
	"github.com/wakeroute/wakeroute/internal/schedule"
	"github.com/wakeroute/wakeroute/internal/transit"
)

// RefreshJob re-evaluates every saved route. Each pass warms the geocode
// and weather caches and logs the upcoming wake times, so the first
// device poll after a cold start is served warm.
type RefreshJob struct {
	config  RefreshConfig
	logger  zerolog.Logger
	planner *planner.Service
	routes  *route.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns         int64
	RoutesEvaluated   int64
	FailedEvaluations int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config  RefreshConfig
	Logger  zerolog.Logger
	Planner *planner.Service
	Routes  *route.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger,
		planner: cfg.Planner,
		routes:  cfg.Routes,
		metrics: &RefreshMetrics{},
	}
}

// RefreshResult contains the result of one refresh pass.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalRoutes int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError records one failed route evaluation.
type RefreshError struct {
	UserID  string
	RouteID string
	Error   string
}

// userRoute pairs a saved route with its owner for the worker pool.
type userRoute struct {
	userID string
	route  models.Route
}

// Run executes one refresh pass over every configured user's routes.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	var work []userRoute
	for _, userID := range j.config.UserIDs {
		paged, err := j.routes.List(ctx, userID, j.config.RoutesPerUser)
		if err != nil {
			j.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to list routes for refresh")
			continue
		}
		for _, rt := range paged.Items {
			work = append(work, userRoute{userID: userID, route: rt})
		}
	}
	result.TotalRoutes = len(work)

	j.logger.Info().
		Int("total_routes", result.TotalRoutes).
		Int("concurrency", j.config.Concurrency).
		Msg("starting route refresh job")

	workChan := make(chan userRoute, len(work))
	resultsChan := make(chan refreshOutcome, len(work))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, workChan, resultsChan)
		}()
	}

	for _, w := range work {
		workChan <- w
	}
	close(workChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for out := range resultsChan {
		if out.err == nil {
			result.Successful++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, RefreshError{
			UserID:  out.work.userID,
			RouteID: out.work.route.ID,
			Error:   out.err.Error(),
		})
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("route refresh job completed")

	return result
}

// Start runs refresh passes at the configured interval until the context
// is canceled. The first pass runs immediately.
func (j *RefreshJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

type refreshOutcome struct {
	work userRoute
	err  error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, work <-chan userRoute, results chan<- refreshOutcome) {
	for w := range work {
		select {
		case <-ctx.Done():
			return
		default:
			results <- refreshOutcome{work: w, err: j.refreshRoute(ctx, w)}
		}
	}
}

func (j *RefreshJob) refreshRoute(ctx context.Context, w userRoute) error {
	evalCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	rt := w.route

	modes := make([]eta.Mode, 0, len(rt.Modes))
	for _, m := range rt.Modes {
		parsed, err := route.ParseAPIMode(m)
		if err != nil {
			return err
		}
		modes = append(modes, parsed)
	}

	req := planner.Request{
		StartAddress:  rt.StartAddress,
		EndAddress:    rt.EndAddress,
		TargetArrival: rt.TargetArrivalLocal,
		Modes:         modes,
		UseCorrection: rt.UseCorrection,
		Schedule: schedule.Config{
			PrepMinutes:         rt.PrepMinutes,
			SafetyMarginMinutes: rt.SafetyMarginMinutes,
			ExtraMarginMinutes:  rt.ExtraMarginMinutes,
			RollForward:         true,
		},
	}
	if rt.BusStationID != nil {
		req.Stop = transit.Stop{BusStationID: *rt.BusStationID}
	}
	if rt.SubwayStation != nil {
		req.Stop.SubwayStation = *rt.SubwayStation
	}

	res, err := j.planner.Evaluate(evalCtx, req)
	if err != nil {
		return err
	}

	j.logger.Debug().
		Str("route_id", rt.ID).
		Str("mode", string(res.ChosenMode)).
		Int("total_minutes", res.Decision.TotalMinutes).
		Time("wake_at", res.Decision.WakeAt).
		Msg("refreshed saved route")

	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.RoutesEvaluated += int64(result.Successful)
	j.metrics.FailedEvaluations += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		RoutesEvaluated:   j.metrics.RoutesEvaluated,
		FailedEvaluations: j.metrics.FailedEvaluations,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map for logging.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"routes_evaluated":   m.RoutesEvaluated,
		"failed_evaluations": m.FailedEvaluations,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_duration":     m.TotalDuration.String(),
	}
}
