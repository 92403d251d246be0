package simulate

import (
	"errors"
	"time"
)

// Config holds configuration for the walk simulator.
type Config struct {
	BaseURL string        // Base URL of the service for HTTP publishing
	Timeout time.Duration // HTTP request timeout

	Broker           string // MQTT broker URL; when set, MQTT replaces HTTP
	LocationTopic    string // MQTT topic for location fixes
	OrientationTopic string // MQTT topic for orientation readings

	StartLat   float64       // Walk starting latitude
	StartLon   float64       // Walk starting longitude
	Steps      int           // Number of walk steps
	StepMeters float64       // Distance covered per step
	Interval   time.Duration // Wall-clock time between steps
	Seed       int64         // Random seed; same seed, same walk
}

// Validate checks the configuration for values the simulator cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Steps <= 0:
		return errors.New("steps must be positive")
	case c.StepMeters <= 0:
		return errors.New("step distance must be positive")
	case c.StartLat < -90 || c.StartLat > 90:
		return errors.New("start latitude out of range")
	case c.StartLon < -180 || c.StartLon > 180:
		return errors.New("start longitude out of range")
	case c.Broker == "" && c.BaseURL == "":
		return errors.New("either a base URL or an MQTT broker is required")
	}
	return nil
}
