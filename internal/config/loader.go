package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PUBCOMPASS_CONFIG is set
//  3. env (prefix PUBCOMPASS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PUBCOMPASS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PUBCOMPASS_ADDR, PUBCOMPASS_SEARCH_RADIUS_M, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("PUBCOMPASS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "pubcompass_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.SearchRadiusMeters <= 0:
		return nil, fmt.Errorf("%w: search_radius_m must be positive", ErrInvalidConfig)
	case cfg.RefreshThresholdMeters < 0:
		return nil, fmt.Errorf("%w: refresh_threshold_m must not be negative", ErrInvalidConfig)
	case cfg.OverpassURL == "":
		return nil, fmt.Errorf("%w: overpass_url must not be empty", ErrInvalidConfig)
	case cfg.MQTTBroker != "" && cfg.MQTTLocationTopic == "":
		return nil, fmt.Errorf("%w: mqtt_location_topic must be set when mqtt_broker is", ErrInvalidConfig)
	}
	return &cfg, nil
}
