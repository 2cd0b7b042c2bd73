// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/zjgaokao/major-advisor/internal/buildinfo"
	"github.com/zjgaokao/major-advisor/internal/config"
	"github.com/zjgaokao/major-advisor/internal/data"
	"github.com/zjgaokao/major-advisor/internal/genai"
	"github.com/zjgaokao/major-advisor/internal/logger"
	"github.com/zjgaokao/major-advisor/internal/metrics"
	"github.com/zjgaokao/major-advisor/internal/ratelimit"
	"github.com/zjgaokao/major-advisor/internal/recommend"
	"github.com/zjgaokao/major-advisor/internal/sentry"
	"github.com/zjgaokao/major-advisor/internal/storage"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg         *config.Config
	logger      *logger.Logger
	catalog     storage.Repository
	recommender genai.Recommender // nil when no provider is configured
	service     *recommend.Service
	metrics     *metrics.Metrics
	registry    *prometheus.Registry
	limiter     *ratelimit.KeyedLimiter
	server      *http.Server
	wg          sync.WaitGroup // background goroutines
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	opts := logger.Options{}
	if cfg.BetterStack.Enabled {
		opts.BetterStackToken = cfg.BetterStack.Token
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, opts)

	log = log.WithField("service", "major-advisor")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context calls in recommend and genai go through
	// the same handler and pick up request_id and client_ip.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.Version).Info("Initializing application...")
	if cfg.BetterStack.Enabled {
		log.Info("Better Stack logging enabled")
	}

	if cfg.Sentry.Enabled {
		release := cfg.Sentry.Release
		if release == "" {
			release = buildinfo.Version
		}
		if err := sentry.Initialize(sentry.Config{
			DSN:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			Release:          release,
			SampleRate:       cfg.Sentry.SampleRate,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		log.WithField("environment", cfg.Sentry.Environment).Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	// The catalog and the model client do not depend on each other.
	var (
		catalog     storage.Repository
		recommender genai.Recommender
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		majors, err := data.Load(cfg.Catalog.ProbabilitySeed)
		if err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
		repo, err := storage.Open(gctx, cfg.Catalog, majors)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		catalog = repo
		return nil
	})
	g.Go(func() error {
		if !cfg.HasLLMProvider() {
			return nil
		}
		initCtx, cancel := context.WithTimeout(gctx, config.LLMClientInit)
		defer cancel()
		r, err := genai.New(initCtx, buildLLMConfig(cfg), m)
		if err != nil {
			return fmt.Errorf("recommender: %w", err)
		}
		recommender = r
		return nil
	})
	if err := g.Wait(); err != nil {
		if catalog != nil {
			_ = catalog.Close()
		}
		if recommender != nil {
			_ = recommender.Close()
		}
		return nil, err
	}

	count, err := catalog.CountMajors(ctx)
	if err != nil {
		_ = catalog.Close()
		return nil, fmt.Errorf("count catalog: %w", err)
	}
	m.SetCatalogSize(catalog.Backend(), count)
	log.WithField("backend", catalog.Backend()).
		WithField("majors", count).
		Info("Catalog loaded")

	if recommender != nil {
		log.WithField("provider", recommender.Provider().String()).
			WithField("model", recommender.Model()).
			Info("LLM recommendations enabled")
	} else {
		log.Info("No LLM provider configured, recommendations served from the catalog")
	}

	service := recommend.NewService(catalog, recommender, recommend.Options{
		Timeout:       cfg.LLM.Timeout,
		MaxConcurrent: int64(cfg.LLM.MaxConcurrent),
		Metrics:       m,
	})

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "recommend",
		Burst:         cfg.RateLimit.Burst,
		RefillRate:    cfg.RateLimit.RatePerSecond(),
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	gin.SetMode(gin.ReleaseMode)

	app := &Application{
		cfg:         cfg,
		logger:      log,
		catalog:     catalog,
		recommender: recommender,
		service:     service,
		metrics:     m,
		registry:    registry,
		limiter:     limiter,
	}

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           gzhttp.GzipHandler(app.routes()),
		ReadHeaderTimeout: config.HTTPReadHeader,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// buildLLMConfig creates a genai.Config from the application config.
func buildLLMConfig(cfg *config.Config) genai.Config {
	return genai.Config{
		Provider:      genai.Provider(cfg.LLM.Provider),
		APIKey:        cfg.LLM.APIKey(),
		Model:         cfg.LLM.Model,
		BaseURL:       cfg.LLM.BaseURL,
		Temperature:   cfg.LLM.Temperature,
		MaxToolRounds: cfg.LLM.MaxToolRounds,
	}
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM.
//
// Shutdown order: cancel background jobs and wait for them, stop the HTTP
// server so in-flight requests finish, then close the model client, the
// catalog and the log shipper.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	errCh := a.startHTTPServer()

	select {
	case sig := <-a.waitForShutdownSignal():
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server error")
		cancel()
		a.wg.Wait()
		_ = a.shutdown()
		return err
	}

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.updateCatalogMetrics(ctx)
	})
}

// startHTTPServer starts the HTTP server in a goroutine. The returned
// channel receives the error if the listener fails.
func (a *Application) startHTTPServer() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// waitForShutdownSignal delivers the first SIGINT/SIGTERM.
func (a *Application) waitForShutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}

// shutdown performs graceful shutdown of HTTP server and resources.
// Call it only after background jobs have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")

	if a.recommender != nil {
		if err := a.recommender.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "recommender").Error("Component close error")
		}
	}

	if err := a.catalog.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "catalog").Error("Component close error")
	}

	a.limiter.Stop()

	if sentry.IsEnabled() && !sentry.Flush(config.LogFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")

	flushCtx, flushCancel := context.WithTimeout(context.Background(), config.LogFlush)
	defer flushCancel()
	if err := a.logger.Shutdown(flushCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
	return nil
}

// updateCatalogMetrics periodically records catalog size and limiter load.
func (a *Application) updateCatalogMetrics(ctx context.Context) {
	a.logger.Debug("Catalog metrics job started")
	defer a.logger.Debug("Catalog metrics job stopped")

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordCatalogMetrics(ctx)
		}
	}
}

func (a *Application) recordCatalogMetrics(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	count, err := a.catalog.CountMajors(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count catalog for metrics")
		return
	}
	a.metrics.SetCatalogSize(a.catalog.Backend(), count)
	a.metrics.SetRateLimiterActive("recommend", a.limiter.ActiveCount())
}
