// Package refresh decides when a movement warrants re-fetching candidates.
package refresh

import "pubcompass/internal/domain/geo"

// DefaultThresholdMeters is how far the user must move before a new candidate
// search is worth the round trip. Anything smaller is GPS jitter.
const DefaultThresholdMeters = 250.0

// Policy evaluates location updates against a movement threshold.
type Policy struct {
	thresholdMeters float64
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithThresholdMeters overrides the movement threshold.
func WithThresholdMeters(m float64) Option {
	return func(p *Policy) {
		if m > 0 {
			p.thresholdMeters = m
		}
	}
}

// NewPolicy creates a Policy with the default threshold.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{thresholdMeters: DefaultThresholdMeters}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShouldRefresh reports whether moving from prev to cur warrants a new
// candidate fetch. A nil prev is the first fix and always refreshes.
func (p *Policy) ShouldRefresh(prev *geo.Coordinate, cur geo.Coordinate) bool {
	if prev == nil {
		return true
	}
	return geo.DistanceMeters(*prev, cur) >= p.thresholdMeters
}
