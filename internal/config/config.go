// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SearchRadiusMeters is the candidate search radius around the fix.
	SearchRadiusMeters float64 `koanf:"search_radius_m"`

	// RefreshThresholdMeters is how far the user must move before a new
	// candidate fetch is triggered.
	RefreshThresholdMeters float64 `koanf:"refresh_threshold_m"`

	// SearchTimeoutMS bounds a single candidate fetch round trip.
	SearchTimeoutMS int `koanf:"search_timeout_ms"`

	// EventBuffer bounds the tracker's in-memory event queue.
	EventBuffer int `koanf:"event_buffer"`

	// OverpassURL is the candidate search endpoint.
	OverpassURL string `koanf:"overpass_url"`

	// MQTTBroker is the sensor broker address, e.g. "tcp://localhost:1883".
	// Empty disables the MQTT sensor source; sensors then arrive over HTTP.
	MQTTBroker string `koanf:"mqtt_broker"`

	// MQTTLocationTopic carries location fixes (JSON or raw NMEA RMC).
	MQTTLocationTopic string `koanf:"mqtt_location_topic"`

	// MQTTOrientationTopic carries raw device-orientation alpha readings.
	MQTTOrientationTopic string `koanf:"mqtt_orientation_topic"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		SearchRadiusMeters:     3000,
		RefreshThresholdMeters: 250,
		SearchTimeoutMS:        10_000,
		EventBuffer:            1024,
		OverpassURL:            "https://overpass-api.de/api/interpreter",
		MQTTBroker:             "",
		MQTTLocationTopic:      "pubcompass/location",
		MQTTOrientationTopic:   "pubcompass/orientation",
	}
}
