package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"pubcompass/internal/adapters/http/api"
	"pubcompass/internal/adapters/http/site"
	"pubcompass/internal/adapters/http/swagger"
	"pubcompass/internal/adapters/mq/sensors"
	"pubcompass/internal/adapters/overpass"
	"pubcompass/internal/adapters/ws"
	"pubcompass/internal/app"
	"pubcompass/internal/config"
	"pubcompass/pkg/logger"
	"pubcompass/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own custom system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	fetcher := overpass.NewClient(
		overpass.WithEndpoint(cfg.OverpassURL),
		overpass.WithRadiusMeters(cfg.SearchRadiusMeters),
		overpass.WithTimeout(time.Duration(cfg.SearchTimeoutMS)*time.Millisecond),
	)

	hub := ws.NewHub()
	defer hub.Close()

	tracker := app.New(
		app.WithLogger(log),
		app.WithFetcher(fetcher),
		app.WithRenderer(hub),
		app.WithQueueSize(cfg.EventBuffer),
		app.WithRefreshThreshold(cfg.RefreshThresholdMeters),
	)
	if err := tracker.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start tracker: " + err.Error() + "\n")
		return
	}
	defer tracker.Stop()

	// The MQTT sensor source is optional; browsers post over HTTP instead.
	if cfg.MQTTBroker != "" {
		source := sensors.NewSource(tracker,
			sensors.WithBroker(cfg.MQTTBroker),
			sensors.WithLocationTopic(cfg.MQTTLocationTopic),
			sensors.WithOrientationTopic(cfg.MQTTOrientationTopic),
		)
		if err := source.Start(ctx); err != nil {
			log.Error(ctx, "sensor source failed to start", logger.Error(err))
			os.Stderr.WriteString(app.ErrSensorUnavailable.Error() + ": " + err.Error() + "\n")
			return
		}
		defer source.Stop()
	}

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(tracker, hub.Handler(tracker.LastFrame)).Register(ctx, mux)
	site.Register(ctx, mux)

	// No WriteTimeout: /ws connections stay open indefinitely.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes process health gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
