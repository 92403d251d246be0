// Package sensors attaches MQTT location and orientation feeds to the
// tracker. Location messages are either JSON fixes or raw NMEA RMC
// sentences; orientation messages are JSON device-orientation readings.
package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"pubcompass/internal/domain/geo"
	"pubcompass/pkg/logger"
)

const (
	defaultLocationTopic    = "pubcompass/location"
	defaultOrientationTopic = "pubcompass/orientation"
	defaultQoS              = 0

	disconnectQuiesceMs = 250
)

// Sink receives parsed sensor readings. The tracker implements it.
type Sink interface {
	SubmitFix(ctx context.Context, c geo.Coordinate) bool
	SubmitHeading(ctx context.Context, heading float64) bool
}

// fixPayload is the JSON shape of a location message.
type fixPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// orientationPayload mirrors the deviceorientation event: alpha is the
// compass-style rotation in degrees, counterclockwise-positive.
type orientationPayload struct {
	Alpha float64 `json:"alpha"`
}

// Source subscribes to the sensor topics and forwards readings to a Sink.
type Source struct {
	broker           string
	clientID         string
	locationTopic    string
	orientationTopic string

	client mqtt.Client
	sink   Sink
	logger logger.Logger
}

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithBroker sets the MQTT broker URL, e.g. tcp://localhost:1883.
func WithBroker(url string) Option {
	return func(s *Source) {
		if url != "" {
			s.broker = url
		}
	}
}

// WithLocationTopic overrides the location topic.
func WithLocationTopic(topic string) Option {
	return func(s *Source) {
		if topic != "" {
			s.locationTopic = topic
		}
	}
}

// WithOrientationTopic overrides the orientation topic.
func WithOrientationTopic(topic string) Option {
	return func(s *Source) {
		if topic != "" {
			s.orientationTopic = topic
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSource constructs a sensor source feeding the given sink.
func NewSource(sink Sink, opts ...Option) *Source {
	s := &Source{
		broker:           "tcp://localhost:1883",
		clientID:         "pubcompass-sensors-" + uuid.NewString(),
		locationTopic:    defaultLocationTopic,
		orientationTopic: defaultOrientationTopic,
		sink:             sink,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects to the broker and subscribes to both sensor topics.
func (s *Source) Start(ctx context.Context) error {
	if s.logger == nil {
		s.logger = logger.Get().Named("sensors")
	}

	mopts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID).
		SetAutoReconnect(true)

	s.client = mqtt.NewClient(mopts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %w", ErrConnect, token.Error())
	}

	if token := s.client.Subscribe(s.locationTopic, defaultQoS, s.onLocation(ctx)); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribe, s.locationTopic, token.Error())
	}
	if token := s.client.Subscribe(s.orientationTopic, defaultQoS, s.onOrientation(ctx)); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribe, s.orientationTopic, token.Error())
	}

	s.logger.Info(ctx, "sensor source attached",
		logger.String("broker", s.broker),
		logger.String("locationTopic", s.locationTopic),
		logger.String("orientationTopic", s.orientationTopic),
	)
	return nil
}

// Stop disconnects from the broker. Safe when Start never succeeded.
func (s *Source) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesceMs)
	}
}

func (s *Source) onLocation(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		fix, err := parseLocation(msg.Payload())
		if err != nil {
			s.logger.Debug(ctx, "location message dropped", logger.Error(err))
			return
		}
		s.sink.SubmitFix(ctx, fix)
	}
}

func (s *Source) onOrientation(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		heading, err := parseOrientation(msg.Payload())
		if err != nil {
			s.logger.Debug(ctx, "orientation message dropped", logger.Error(err))
			return
		}
		s.sink.SubmitHeading(ctx, heading)
	}
}

// parseLocation accepts either a JSON fix or a single NMEA sentence. Only
// RMC sentences with an active validity flag produce a coordinate.
func parseLocation(payload []byte) (geo.Coordinate, error) {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "$") {
		return parseRMC(text)
	}

	var fix fixPayload
	if err := json.Unmarshal(payload, &fix); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return geo.Coordinate{Lat: fix.Lat, Lon: fix.Lon}, nil
}

func parseRMC(line string) (geo.Coordinate, error) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	if sentence.DataType() != nmea.TypeRMC {
		return geo.Coordinate{}, fmt.Errorf("%w: sentence type %s", ErrBadPayload, sentence.DataType())
	}
	rmc := sentence.(nmea.RMC)
	if rmc.Validity != nmea.ValidRMC {
		return geo.Coordinate{}, fmt.Errorf("%w: validity %q", ErrInvalidFix, rmc.Validity)
	}
	return geo.Coordinate{Lat: rmc.Latitude, Lon: rmc.Longitude}, nil
}

// parseOrientation maps a deviceorientation alpha reading to a clockwise
// compass heading.
func parseOrientation(payload []byte) (float64, error) {
	var reading orientationPayload
	if err := json.Unmarshal(payload, &reading); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return geo.HeadingFromAlpha(reading.Alpha), nil
}
