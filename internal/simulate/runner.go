package simulate

import (
	"context"
	"fmt"
	"time"

	"pubcompass/internal/domain/geo"
	"pubcompass/pkg/logger"
)

// Run walks the generated track against the configured service, publishing
// a fix and an orientation reading per step.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid simulator config: %w", err)
	}

	log := logger.Get().Named("walk-sim")

	pub, err := NewPublisher(cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	origin := geo.Coordinate{Lat: cfg.StartLat, Lon: cfg.StartLon}
	track := Track(origin, cfg.Steps, cfg.StepMeters, cfg.Seed)

	log.Info(ctx, "starting walk",
		logger.Float64("startLat", cfg.StartLat),
		logger.Float64("startLon", cfg.StartLon),
		logger.Int("steps", len(track)),
		logger.Float64("stepMeters", cfg.StepMeters),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	start := time.Now()
	published := 0
	for i, step := range track {
		if err := pub.PublishFix(ctx, step.Fix); err != nil {
			log.Warn(ctx, "fix publish failed", logger.Int("step", i), logger.Error(err))
		}
		if err := pub.PublishAlpha(ctx, step.Alpha); err != nil {
			log.Warn(ctx, "orientation publish failed", logger.Int("step", i), logger.Error(err))
		}
		published++

		if i == len(track)-1 {
			break
		}
		select {
		case <-ctx.Done():
			log.Info(ctx, "walk interrupted", logger.Int("published", published))
			return ctx.Err()
		case <-ticker.C:
		}
	}

	log.Info(ctx, "walk finished",
		logger.Int("published", published),
		logger.String("elapsed", time.Since(start).Round(time.Millisecond).String()),
	)
	return nil
}
