package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"pubcompass/internal/domain/geo"
)

const disconnectQuiesceMs = 250

// Publisher delivers simulated sensor readings to the service.
type Publisher interface {
	PublishFix(ctx context.Context, c geo.Coordinate) error
	PublishAlpha(ctx context.Context, alpha float64) error
	Close()
}

// NewPublisher picks the transport from the configuration: MQTT when a
// broker is set, HTTP otherwise.
func NewPublisher(cfg *Config) (Publisher, error) {
	if cfg.Broker != "" {
		return newMQTTPublisher(cfg)
	}
	return newHTTPPublisher(cfg), nil
}

// httpPublisher posts readings to the service's sensor endpoints.
type httpPublisher struct {
	client  *http.Client
	baseURL string
}

func newHTTPPublisher(cfg *Config) *httpPublisher {
	return &httpPublisher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

func (p *httpPublisher) PublishFix(ctx context.Context, c geo.Coordinate) error {
	return p.post(ctx, "/location", map[string]float64{"lat": c.Lat, "lon": c.Lon})
}

func (p *httpPublisher) PublishAlpha(ctx context.Context, alpha float64) error {
	return p.post(ctx, "/orientation", map[string]float64{"alpha": alpha})
}

func (p *httpPublisher) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

func (p *httpPublisher) Close() {}

// mqttPublisher publishes readings to the sensor topics.
type mqttPublisher struct {
	client           mqtt.Client
	locationTopic    string
	orientationTopic string
}

func newMQTTPublisher(cfg *Config) (*mqttPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("pubcompass-walk-sim-" + uuid.NewString())

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", cfg.Broker, token.Error())
	}
	return &mqttPublisher{
		client:           client,
		locationTopic:    cfg.LocationTopic,
		orientationTopic: cfg.OrientationTopic,
	}, nil
}

func (p *mqttPublisher) PublishFix(_ context.Context, c geo.Coordinate) error {
	payload, err := json.Marshal(map[string]float64{"lat": c.Lat, "lon": c.Lon})
	if err != nil {
		return fmt.Errorf("marshal fix: %w", err)
	}
	token := p.client.Publish(p.locationTopic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish fix: %w", token.Error())
	}
	return nil
}

func (p *mqttPublisher) PublishAlpha(_ context.Context, alpha float64) error {
	payload, err := json.Marshal(map[string]float64{"alpha": alpha})
	if err != nil {
		return fmt.Errorf("marshal alpha: %w", err)
	}
	token := p.client.Publish(p.orientationTopic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish alpha: %w", token.Error())
	}
	return nil
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(disconnectQuiesceMs)
}
