// Package overpass fetches nearby pubs from an Overpass-compatible
// OpenStreetMap query endpoint.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
)

// Defaults for the public Overpass instance.
const (
	DefaultEndpoint     = "https://overpass-api.de/api/interpreter"
	DefaultRadiusMeters = 3000.0
	defaultTimeout      = 10 * time.Second
	defaultUserAgent    = "pubcompass/1.0"
)

// Client queries an Overpass endpoint for amenity=pub elements.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	radiusMeters float64
	userAgent    string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithEndpoint overrides the Overpass endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithRadiusMeters overrides the search radius.
func WithRadiusMeters(radius float64) Option {
	return func(c *Client) {
		if radius > 0 {
			c.radiusMeters = radius
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a Client with default configuration.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		endpoint:     DefaultEndpoint,
		radiusMeters: DefaultRadiusMeters,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Nearby returns pubs around origin within the configured radius.
//
// Both node elements (point coordinate) and way elements (center of the
// building footprint) are accepted; the point coordinate is extracted
// uniformly from either shape.
func (c *Client) Nearby(ctx context.Context, origin geo.Coordinate) ([]model.Pub, error) {
	query := fmt.Sprintf(`
		[out:json][timeout:25];
		(
			node["amenity"="pub"](around:%f,%f,%f);
			way["amenity"="pub"](around:%f,%f,%f);
		);
		out center;
	`, c.radiusMeters, origin.Lat, origin.Lon, c.radiusMeters, origin.Lat, origin.Lon)

	body := strings.NewReader("data=" + url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	pubs := make([]model.Pub, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		loc, ok := el.point()
		if !ok {
			continue
		}
		pubs = append(pubs, model.Pub{
			ID:       fmt.Sprintf("%s/%d", el.Type, el.ID),
			Name:     el.Tags["name"],
			Location: loc,
		})
	}
	return pubs, nil
}
