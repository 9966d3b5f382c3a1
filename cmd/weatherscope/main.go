package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weatherscope/internal/api/http"
	"github.com/i474232898/weatherscope/internal/config"
	"github.com/i474232898/weatherscope/internal/locations"
	"github.com/i474232898/weatherscope/internal/logging"
	"github.com/i474232898/weatherscope/internal/metrics"
	"github.com/i474232898/weatherscope/internal/polling"
	"github.com/i474232898/weatherscope/internal/preferences"
	"github.com/i474232898/weatherscope/internal/scheduler"
	"github.com/i474232898/weatherscope/internal/session"
	"github.com/i474232898/weatherscope/internal/store"
	"github.com/i474232898/weatherscope/internal/weather"
	"github.com/i474232898/weatherscope/internal/weather/providers"
)

const serviceName = "weatherscope"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the application and blocks until a shutdown signal arrives.
// Deferred cleanups run on every return path.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser := logging.New(logging.Config{
		Service:  serviceName,
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFile,
	})
	defer logCloser.Close()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	// Query result cache with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL)
	if !provider.Configured() {
		log.Warn().Msg("OpenWeatherMap API key not configured; weather queries will fail")
	}
	service := weather.NewService(provider, memStore,
		weather.WithRecorder(recorder),
		weather.WithLogger(log.With().Str("component", "weather").Logger()),
	)

	kv, err := store.NewSQLiteKV(cfg.PreferencesDB)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.PreferencesDB).Msg("failed to open preferences store")
		return fmt.Errorf("open preferences store: %w", err)
	}
	defer kv.Close()
	prefs := preferences.NewStore(kv, log.With().Str("component", "preferences").Logger())

	suggestions := locations.NewIndex(locations.DefaultSeed())
	favorites := locations.NewIndex(locations.DefaultFavorites())

	poller := polling.New(polling.Config{
		OnTick: recorder.ObserveTick,
		Logger: log.With().Str("component", "polling").Logger(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl, err := session.New(ctx, session.Config{
		Index:       suggestions,
		Favorites:   favorites,
		Querier:     service,
		Preferences: prefs,
		Scheduler:   poller,
		Recorder:    recorder,
		Logger:      log,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to start session")
		return fmt.Errorf("start session: %w", err)
	}
	defer ctrl.Close()

	// Refresher that keeps monitored-location temperatures current.
	refresher := scheduler.New(favorites, service, scheduler.Config{
		Interval: cfg.MonitorInterval,
		Fetch:    cfg.MonitorFetch,
		Logger:   log.With().Str("component", "refresher").Logger(),
	})
	if err := refresher.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start refresher")
		return fmt.Errorf("start refresher: %w", err)
	}
	defer refresher.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Queries may take up to the provider timeout.
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
			"session": ctrl.ID(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, ctrl)

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("session adapter listening")
		listenErr <- app.Listen(cfg.Addr())
	}()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
			return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
