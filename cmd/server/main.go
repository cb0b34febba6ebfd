package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pmalloy/campaignsync/internal/ads"
	"github.com/pmalloy/campaignsync/internal/analytics"
	"github.com/pmalloy/campaignsync/internal/api"
	"github.com/pmalloy/campaignsync/internal/config"
	"github.com/pmalloy/campaignsync/internal/db"
	"github.com/pmalloy/campaignsync/internal/middleware"
	"github.com/pmalloy/campaignsync/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.OTLPEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdownTracing()
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	// Redis is optional; without it update notifications are skipped.
	var notifier *db.RedisStore
	if cfg.RedisAddr != "" {
		notifier, err = db.InitRedis(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer notifier.Close()
	} else {
		logger.Warn("REDIS_ADDR not set, update notifications disabled")
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	// ClickHouse is optional; without it lifecycle events stay in memory.
	var analyticsSvc analytics.Service
	if cfg.ClickHouseDSN != "" {
		analyticsSvc, err = analytics.InitClickHouse(cfg.ClickHouseDSN, metricsRegistry)
		if err != nil {
			return fmt.Errorf("failed to connect clickhouse: %w", err)
		}
	} else {
		logger.Warn("CLICKHOUSE_DSN not set, lifecycle events will not be persisted")
		analyticsSvc = analytics.NewMockAnalytics()
	}
	defer analyticsSvc.Close()

	gateway := ads.New(cfg.GoogleAds, logger, metricsRegistry)

	srv := api.NewServer(logger, pg, gateway, analyticsSvc, notifier, metricsRegistry, cfg)
	router := srv.Routes()
	router.Use(middleware.WithTraceLogger(logger))

	handler := otelhttp.NewHandler(router, "http.server")

	addr := ":" + cfg.Port
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Campaign service running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
