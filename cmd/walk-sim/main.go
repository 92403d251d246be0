package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pubcompass/internal/simulate"
	"pubcompass/pkg/logger"
)

// Default walk parameters. The start point is Westminster, which has no
// shortage of pubs within the search radius.
const (
	defaultStartLat   = 51.5007
	defaultStartLon   = -0.1246
	defaultSteps      = 120
	defaultStepMeters = 25.0
	defaultInterval   = time.Second
	defaultTimeout    = 10 * time.Second
)

func main() {
	var (
		baseURL          = flag.String("url", "http://localhost:8080", "Base URL of the compass service")
		broker           = flag.String("broker", "", "MQTT broker URL; when set, publish over MQTT instead of HTTP")
		locationTopic    = flag.String("location-topic", "pubcompass/location", "MQTT topic for location fixes")
		orientationTopic = flag.String("orientation-topic", "pubcompass/orientation", "MQTT topic for orientation readings")
		startLat         = flag.Float64("lat", defaultStartLat, "Walk starting latitude")
		startLon         = flag.Float64("lon", defaultStartLon, "Walk starting longitude")
		steps            = flag.Int("steps", defaultSteps, "Number of walk steps")
		stepMeters       = flag.Float64("step", defaultStepMeters, "Distance per step in meters")
		interval         = flag.Duration("interval", defaultInterval, "Time between steps")
		timeout          = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed             = flag.Int64("seed", time.Now().UnixNano(), "Random seed; reuse one to replay a walk")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &simulate.Config{
		BaseURL:          *baseURL,
		Timeout:          *timeout,
		Broker:           *broker,
		LocationTopic:    *locationTopic,
		OrientationTopic: *orientationTopic,
		StartLat:         *startLat,
		StartLon:         *startLon,
		Steps:            *steps,
		StepMeters:       *stepMeters,
		Interval:         *interval,
		Seed:             *seed,
	}
	if *broker != "" {
		// MQTT replaces HTTP entirely.
		cfg.BaseURL = ""
	}

	if err := simulate.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Get().Error(ctx, "walk failed", logger.Error(err))
		os.Exit(1)
	}
}
