// Package main provides the entrypoint for the WakeRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/api"
	"github.com/wakeroute/wakeroute/internal/api/handler"
	"github.com/wakeroute/wakeroute/internal/api/middleware"
	"github.com/wakeroute/wakeroute/internal/auth"
	"github.com/wakeroute/wakeroute/internal/database"
	"github.com/wakeroute/wakeroute/internal/featureflags"
	"github.com/wakeroute/wakeroute/internal/geocoding"
	"github.com/wakeroute/wakeroute/internal/geocoding/nominatim"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/provider/resilience"
	"github.com/wakeroute/wakeroute/internal/route"
	"github.com/wakeroute/wakeroute/internal/routing"
	"github.com/wakeroute/wakeroute/internal/routing/osrm"
	"github.com/wakeroute/wakeroute/internal/telemetry"
	"github.com/wakeroute/wakeroute/internal/transit"
	"github.com/wakeroute/wakeroute/internal/weather"
	"github.com/wakeroute/wakeroute/internal/weather/kma"
)

// Version, Commit and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "wakeroute-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("commit", Commit).
		Str("build_time", BuildTime).
		Msg("starting WakeRoute API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1)
	}
	evalMetrics, err := middleware.NewEvaluationMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize evaluation metrics")
		os.Exit(1)
	}

	// Storage: the backend selects the repository implementations and
	// the readiness check.
	dbConfig := database.ConfigFromEnv()

	var (
		historyRepo history.Repository
		routeRepo   route.Repository
		flagRepo    featureflags.Repository
		checks      []handler.DependencyCheck
	)

	switch dbConfig.Backend {
	case database.BackendPostgres:
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("postgres connected")

		historyRepo = history.NewPostgresRepository(pool)
		routeRepo = route.NewPostgresRepository(pool)
		flagRepo = featureflags.NewPostgresRepository(pool)
		checks = append(checks, handler.DependencyCheck{
			Name:  "database",
			Check: pool.Ping,
		})

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
		log.Info().Str("path", dbConfig.SQLitePath).Msg("sqlite opened")

		historyRepo = historySQLite
		routeRepo = routeSQLite
		// Flags have no sqlite store; admin writes apply until restart.
		flagRepo = featureflags.NewInMemoryRepository()
		checks = append(checks, handler.DependencyCheck{
			Name:  "database",
			Check: db.PingContext,
		})
	}

	// Auth: pre-shared device keys exchanged for short-lived JWTs.
	signingKey := os.Getenv("AUTH_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default signing key, not secure for production")
	}
	deviceKeys := auth.ParseDeviceKeys(os.Getenv("AUTH_DEVICE_KEYS"))
	if len(deviceKeys) == 0 {
		log.Warn().Msg("no device keys configured, pairing will fail")
	}
	authService := auth.NewService(auth.ServiceConfig{
		JWT: auth.NewJWTService(auth.JWTConfig{
			SigningKey: signingKey,
			Issuer:     "https://api.wakeroute.dev",
			Audience:   "wakeroute-api",
		}),
		DeviceKeys: deviceKeys,
		Logger:     log,
	})

	// Outbound providers, each behind its own retry and breaker budget.
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
		log.Info().Msg("weather provider initialized")
	} else {
		log.Warn().Msg("KMA_SERVICE_KEY not set, rain penalty disabled")
	}

	var routingService *routing.Service
	if base := os.Getenv("OSRM_BASE_URL"); base != "" {
		routingService = routing.NewService(routing.ServiceConfig{
			Provider: osrm.NewClient(osrm.ClientConfig{
				BaseURL:    base,
				HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: "osrm"}),
				Logger:     log,
			}),
			Logger: log,
		})
		log.Info().Msg("routing provider initialized")
	}

	// No live arrival provider yet; the transit service falls back to
	// mode default waits.
	transitService := transit.NewService(transit.ServiceConfig{Logger: log})

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
		Transit:  transitService,
		Routing:  routingService,
		History:  historyService,
		Flags:    flagService,
		Logger:   log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		Commit:             Commit,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		EvaluationMetrics:  evalMetrics,
		AuthService:        authService,
		PlannerService:     plannerService,
		RouteService:       routeService,
		HistoryService:     historyService,
		FeatureFlagService: flagService,
		Checks:             checks,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
