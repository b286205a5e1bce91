package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/featureflags"
	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/geocoding"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/route"
)

type staticGeocoder struct {
	book map[string]geo.Coordinate
}

func (g *staticGeocoder) Geocode(_ context.Context, address string) (geo.Coordinate, error) {
	if c, ok := g.book[address]; ok {
		return c, nil
	}
	return geo.Coordinate{}, geocoding.ErrAddressNotFound
}

func (g *staticGeocoder) Name() string { return "static" }

func newTestJob(t *testing.T, userIDs []string) (*RefreshJob, *route.Service) {
	t.Helper()

	geocoder, err := geocoding.NewService(geocoding.ServiceConfig{
		Provider: &staticGeocoder{book: map[string]geo.Coordinate{
			"Gwanghwamun Square": {Lat: 37.5759, Lon: 126.9769},
			"Gangnam Station":    {Lat: 37.4979, Lon: 127.0276},
		}},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	routes := route.NewService(route.NewInMemoryRepository())
	plannerSvc := planner.NewService(planner.ServiceConfig{
		Geocoder: geocoder,
		History:  history.NewService(history.ServiceConfig{Repository: history.NewInMemoryRepository(), Logger: zerolog.Nop()}),
		Flags:    featureflags.NewService(featureflags.ServiceConfig{Repository: featureflags.NewInMemoryRepository(), Logger: zerolog.Nop()}),
		Logger:   zerolog.Nop(),
	})

	job := NewRefreshJob(RefreshJobConfig{
		Config:  RefreshConfig{UserIDs: userIDs, Concurrency: 2, Timeout: 5 * time.Second},
		Logger:  zerolog.Nop(),
		Planner: plannerSvc,
		Routes:  routes,
	})
	return job, routes
}

func createRoute(t *testing.T, routes *route.Service, userID, start, end string) *models.Route {
	t.Helper()
	rt, err := routes.Create(context.Background(), userID, &models.RouteCreateRequest{
		Label:              "morning commute",
		StartAddress:       start,
		EndAddress:         end,
		TargetArrivalLocal: "09:00",
		Modes:              []models.Mode{models.ModeWalk, models.ModeSubway},
		PrepMinutes:        20,
		SafetyMarginMinutes: 10,
	})
	require.NoError(t, err)
	return rt
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := DefaultRefreshConfig()

	assert.Equal(t, 200, cfg.RoutesPerUser)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
}

func TestRefreshConfig_WithDefaults(t *testing.T) {
	cfg := RefreshConfig{Concurrency: 8}.withDefaults()

	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 200, cfg.RoutesPerUser)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
}

func TestRefreshJob_Run_NoRoutes(t *testing.T) {
	job, _ := newTestJob(t, []string{"usr_bedside"})

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 0, result.TotalRoutes)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestRefreshJob_Run_EvaluatesSavedRoutes(t *testing.T) {
	job, routes := newTestJob(t, []string{"usr_bedside"})
	createRoute(t, routes, "usr_bedside", "Gwanghwamun Square", "Gangnam Station")
	createRoute(t, routes, "usr_bedside", "Gangnam Station", "Gwanghwamun Square")

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.TotalRoutes)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
}

func TestRefreshJob_Run_RecordsFailures(t *testing.T) {
	job, routes := newTestJob(t, []string{"usr_bedside"})
	createRoute(t, routes, "usr_bedside", "Gwanghwamun Square", "Gangnam Station")
	bad := createRoute(t, routes, "usr_bedside", "Gwanghwamun Square", "Nowhere Street 1")

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.TotalRoutes)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, bad.ID, result.Errors[0].RouteID)
	assert.Equal(t, "usr_bedside", result.Errors[0].UserID)
	assert.NotEmpty(t, result.Errors[0].Error)
}

func TestRefreshJob_Run_SkipsUnknownUser(t *testing.T) {
	job, routes := newTestJob(t, []string{"usr_bedside", "usr_other"})
	createRoute(t, routes, "usr_bedside", "Gwanghwamun Square", "Gangnam Station")

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.TotalRoutes)
	assert.Equal(t, 1, result.Successful)
}

func TestRefreshJob_Metrics(t *testing.T) {
	job, routes := newTestJob(t, []string{"usr_bedside"})
	createRoute(t, routes, "usr_bedside", "Gwanghwamun Square", "Gangnam Station")

	job.Run(context.Background())
	job.Run(context.Background())

	m := job.GetMetrics()
	assert.Equal(t, int64(2), m.TotalRuns)
	assert.Equal(t, int64(2), m.RoutesEvaluated)
	assert.Equal(t, int64(0), m.FailedEvaluations)
	assert.False(t, m.LastRunAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(2), snapshot["total_runs"])
	assert.Contains(t, snapshot, "last_run_duration")
}
