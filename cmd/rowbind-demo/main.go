package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/rowbind/pkg/config"
	"github.com/platinummonkey/rowbind/pkg/directory"
	"github.com/platinummonkey/rowbind/pkg/httputil"
	"github.com/platinummonkey/rowbind/pkg/observability"
	"github.com/platinummonkey/rowbind/pkg/scan"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			logrus.Fatalf("Failed to apply config file: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithField("version", version).Info("starting rowbind-demo")

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	ctx := context.Background()
	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		logger.WithError(err).Error("failed to connect to database")
		os.Exit(1)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("database connected")

	// Mapper registration is a startup concern: any declaration error is a
	// programming mistake and must abort the process before serving.
	registry := scan.NewRegistry()
	if err := directory.RegisterMappers(registry); err != nil {
		logger.WithError(err).Error("failed to register column mappers")
		os.Exit(1)
	}

	scanner, err := scan.NewScanner(registry,
		scan.WithLogger(logger),
		scan.WithMetrics(metrics),
		scan.WithPlanCacheSize(cfg.Scan.PlanCacheSize),
	)
	if err != nil {
		logger.WithError(err).Error("failed to create scanner")
		os.Exit(1)
	}

	svc, err := directory.NewService(db, scanner, logger)
	if err != nil {
		logger.WithError(err).Error("failed to create directory service")
		os.Exit(1)
	}
	if cfg.Database.Driver == "sqlite3" {
		if err := svc.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Error("failed to ensure schema")
			os.Exit(1)
		}
		if err := svc.SeedDemoData(ctx); err != nil {
			logger.WithError(err).Error("failed to seed demo data")
			os.Exit(1)
		}
	}

	router := mux.NewRouter()
	svc.RegisterRoutes(router)

	var handler http.Handler = router
	handler = httputil.MetricsMiddleware(metrics)(handler)
	handler = httputil.LoggingMiddleware(logger)(handler)
	handler = httputil.RequestIDMiddleware(handler)
	handler = httputil.RecoveryMiddleware(logger)(handler)
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "rowbind-demo")
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(db, version)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", health.Liveness)
	healthMux.HandleFunc("/readyz", health.Readiness)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	stopStats := make(chan struct{})
	if metrics != nil {
		go publishDBStats(db, metrics, stopStats)
	}

	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(providers.Shutdown)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		close(stopStats)
		return db.Close()
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	g.Go(shutdown.WaitForShutdown)

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	logger.Info("rowbind-demo stopped")
}

// publishDBStats periodically exports connection pool gauges until stop is
// closed.
func publishDBStats(db *sql.DB, metrics *observability.Metrics, stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBStats(db.Stats())
		case <-stop:
			return
		}
	}
}
