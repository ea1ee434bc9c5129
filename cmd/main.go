package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/okian/livetable/internal/adapters/cache"
	"github.com/okian/livetable/internal/adapters/http/api"
	"github.com/okian/livetable/internal/adapters/http/site"
	"github.com/okian/livetable/internal/adapters/http/swagger"
	"github.com/okian/livetable/internal/adapters/scheduler"
	"github.com/okian/livetable/internal/adapters/upstream"
	"github.com/okian/livetable/internal/adapters/upstream/apifootball"
	"github.com/okian/livetable/internal/adapters/upstream/footballdata"
	app "github.com/okian/livetable/internal/app"
	"github.com/okian/livetable/internal/config"
	"github.com/okian/livetable/pkg/logger"
	"github.com/okian/livetable/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6

	// A warm run makes at most three sequential upstream calls:
	// standings, LIVE and the IN_PLAY fallback.
	warmUpstreamCalls = 3
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Get().Warn(ctx, "failed to read .env", logger.Error(err))
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to set log format: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "server failed", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, l logger.Logger) error {
	provider, err := newProvider(cfg, l)
	if err != nil {
		return err
	}
	if !provider.HasCredentials() {
		l.Warn(ctx, "no upstream API key configured; requests will likely be rejected",
			logger.String("provider", provider.Name()))
	}

	svc := app.New(provider,
		app.WithCache(cache.New()),
		app.WithStandingsTTL(cfg.StandingsTTL()),
		app.WithLiveTTL(cfg.LiveTTL()),
		app.WithLogger(l.Named("service")),
	)

	if interval := cfg.WarmInterval(); interval > 0 {
		warmer, err := scheduler.New(svc, interval,
			scheduler.WithTimeout(warmTimeout(cfg)),
			scheduler.WithLogger(l.Named("warmer")),
		)
		if err != nil {
			return err
		}
		if err := warmer.Start(); err != nil {
			return err
		}
		defer func() { _ = warmer.Stop() }()
	}

	go startSystemMetricsUpdater(ctx)

	if !site.Available(cfg.StaticDir) {
		l.Warn(ctx, "static directory not found; site root will return 404", logger.String("static_dir", cfg.StaticDir))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, l),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("provider", provider.Name()),
			logger.String("league", provider.League()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	l.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	l.Info(ctx, "server stopped")
	return nil
}

// warmTimeout bounds one warm run so the IN_PLAY fallback still gets a full
// upstream timeout after the two calls before it.
func warmTimeout(cfg *config.Config) time.Duration {
	return cfg.UpstreamTimeout() * warmUpstreamCalls
}

// newProvider builds the configured upstream adapter.
func newProvider(cfg *config.Config, l logger.Logger) (app.Provider, error) {
	opts := []upstream.Option{
		upstream.WithTimeout(cfg.UpstreamTimeout()),
		upstream.WithLogger(l.Named("upstream")),
	}
	switch cfg.Provider {
	case config.ProviderFootballData:
		return footballdata.New(cfg.FootballDataURL, cfg.FootballDataToken, cfg.ResolvedLeague(), opts...), nil
	case config.ProviderAPIFootball:
		league, err := strconv.Atoi(cfg.ResolvedLeague())
		if err != nil {
			return nil, fmt.Errorf("%w: league %q", config.ErrInvalidConfig, cfg.ResolvedLeague())
		}
		return apifootball.New(cfg.APIFootballURL, cfg.APIFootballKey, league, cfg.Season, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}

// newRouter registers the API, the OpenAPI document and finally the static
// site catch-all.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, l logger.Logger) *mux.Router {
	router := mux.NewRouter()
	api.NewServer(svc, api.WithLogger(l.Named("http"))).Register(ctx, router)
	swagger.Register(ctx, router)
	site.Register(ctx, router, cfg.StaticDir)
	return router
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
