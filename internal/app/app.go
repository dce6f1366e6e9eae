package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"aitolife/internal/cache"
	"aitolife/internal/content"
	"aitolife/internal/directory"
	"aitolife/internal/i18n"
	"aitolife/internal/telemetry"
)

// NewLogger builds the process logger for cfg.
func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// App owns the long-lived dependencies shared by the commands.
type App struct {
	cfg        Config
	logger     *zap.Logger
	metrics    *telemetry.PrometheusMetrics
	closeStore func() error
	source     *content.Source
}

// New connects the configured cache store and content source.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("app")

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewPrometheusMetrics(prometheus.NewRegistry())
	c := cache.New(store,
		cache.WithPrefix(cfg.CachePrefix),
		cache.WithLogger(logger),
		cache.WithMetrics(metrics),
	)
	client := content.NewClient(cfg.Contentful, cfg.ContentMode(), nil)
	source := content.NewSource(content.SourceConfig{
		Fetcher: client,
		Cache:   c,
		TTL:     cfg.CacheTTL,
		Logger:  logger,
		Metrics: metrics,
	})

	return &App{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		closeStore: closeStore,
		source:     source,
	}, nil
}

// Close releases the cache store.
func (a *App) Close() error {
	return a.closeStore()
}

// Serve runs the site until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	handler, err := NewServer(Options{
		Source:          a.source,
		Logger:          a.logger,
		Metrics:         a.metrics,
		MetricsHandler:  a.metrics.Handler(),
		DefaultLanguage: a.cfg.DefaultLanguage,
		Preview:         a.cfg.Preview,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("aitolife listening",
			zap.String("addr", srv.Addr),
			zap.String("content_mode", string(a.cfg.ContentMode())),
			zap.String("cache_backend", a.cfg.CacheBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// Tools runs the directory engine over the live catalog.
func (a *App) Tools(ctx context.Context, lang i18n.Language, f directory.Filter) []directory.Tool {
	return directory.NewEngine(lang.Tag()).Apply(a.source.Tools(ctx, lang), f)
}

// ClearCache removes every cached entry in the configured namespace.
func (a *App) ClearCache(ctx context.Context) int {
	return a.source.Invalidate(ctx)
}
