// Package main provides the entrypoint for the WakeRoute background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/auth"
	"github.com/wakeroute/wakeroute/internal/database"
	"github.com/wakeroute/wakeroute/internal/featureflags"
	"github.com/wakeroute/wakeroute/internal/geocoding"
	"github.com/wakeroute/wakeroute/internal/geocoding/nominatim"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/provider/resilience"
	"github.com/wakeroute/wakeroute/internal/route"
	"github.com/wakeroute/wakeroute/internal/telemetry"
	"github.com/wakeroute/wakeroute/internal/transit"
	"github.com/wakeroute/wakeroute/internal/weather"
	"github.com/wakeroute/wakeroute/internal/weather/kma"
	"github.com/wakeroute/wakeroute/internal/worker"
)

// Version, Commit and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "wakeroute-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("commit", Commit).
		Str("build_time", BuildTime).
		Msg("starting WakeRoute worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8081"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	// Storage: the worker shares the API's stores so refreshed routes
	// and ingested outcomes land in the same place.
	dbConfig := database.ConfigFromEnv()

	var (
		historyRepo history.Repository
		routeRepo   route.Repository
		flagRepo    featureflags.Repository
	)

	switch dbConfig.Backend {
	case database.BackendPostgres:
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		historyRepo = history.NewPostgresRepository(pool)
		routeRepo = route.NewPostgresRepository(pool)
		flagRepo = featureflags.NewPostgresRepository(pool)

	case database.BackendMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		historyRepo = history.NewInMemoryRepository()
		routeRepo = route.NewInMemoryRepository()
		flagRepo = featureflags.NewInMemoryRepository()

	default:
		db, err := database.OpenSQLite(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite database")
		}
		defer db.Close()

		historySQLite := history.NewSQLiteRepository(db)
		routeSQLite := route.NewSQLiteRepository(db)
		if err := historySQLite.InitSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize history schema")
		}
		if err := routeSQLite.InitSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize route schema")
		}

		historyRepo = historySQLite
		routeRepo = routeSQLite
		flagRepo = featureflags.NewInMemoryRepository()
	}

	geocodeProvider := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    os.Getenv("NOMINATIM_BASE_URL"),
		UserAgent:  "wakeroute/" + Version,
		HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: "nominatim"}),
		Logger:     log,
	})
	geocoder, err := geocoding.NewService(geocoding.ServiceConfig{
		Provider: geocodeProvider,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocoder")
	}

	var weatherService *weather.Service
	if key := os.Getenv("KMA_SERVICE_KEY"); key != "" {
		weatherService = weather.NewService(weather.ServiceConfig{
			Provider: kma.NewClient(kma.ClientConfig{
				ServiceKey: key,
				HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: "kma"}),
				Logger:     log,
			}),
			Logger: log,
		})
	}

	historyService := history.NewService(history.ServiceConfig{
		Repository: historyRepo,
		Logger:     log,
	})
	flagService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: flagRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	routeService := route.NewService(routeRepo)

	plannerService := planner.NewService(planner.ServiceConfig{
		Geocoder: geocoder,
		Weather:  weatherService,
		Transit:  transit.NewService(transit.ServiceConfig{Logger: log}),
		History:  historyService,
		Flags:    flagService,
		Logger:   log,
	})

	// Routes are stored per user, so the refresh pass walks the users
	// known from the pairing configuration.
	userIDs := pairedUserIDs(os.Getenv("AUTH_DEVICE_KEYS"))
	if len(userIDs) == 0 {
		log.Warn().Msg("no device keys configured, refresh pass has no users to walk")
	}

	refreshConfig := worker.DefaultRefreshConfig()
	refreshConfig.UserIDs = userIDs
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			refreshConfig.Interval = d
		}
	}
	if v := os.Getenv("REFRESH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			refreshConfig.Concurrency = n
		}
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  refreshConfig,
		Logger:  log,
		Planner: plannerService,
		Routes:  routeService,
	})

	go refreshJob.Start(ctx)
	log.Info().
		Dur("interval", refreshConfig.Interval).
		Int("users", len(userIDs)).
		Msg("refresh job started")

	// Pub/Sub ingestion is optional; without a project the worker runs
	// the periodic refresh only.
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
		if subscription == "" {
			subscription = "wakeroute-jobs"
		}

		consumer, err := worker.NewPubSubConsumer(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Logger:           log,
			History:          historyService,
			RefreshJob:       refreshJob,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub consumer")
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub consumer stopped")
				cancel()
			}
		}()
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set, outcome ingestion disabled")
	}

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, Version)
	})
	mux.HandleFunc("/metrics/refresh", func(w http.ResponseWriter, r *http.Request) {
		m := refreshJob.GetMetrics()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w,
			`{"total_runs":%d,"routes_evaluated":%d,"failed_evaluations":%d}`,
			m.TotalRuns, m.RoutesEvaluated, m.FailedEvaluations,
		)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// pairedUserIDs returns the distinct user IDs from the device key
// configuration, sorted for stable refresh ordering.
func pairedUserIDs(deviceKeys string) []string {
	seen := make(map[string]struct{})
	for _, userID := range auth.ParseDeviceKeys(deviceKeys) {
		seen[userID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
