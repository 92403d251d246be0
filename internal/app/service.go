// Package app hosts the Tracker, the presentation state machine that turns
// sensor events into derived display frames.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	eventqueue "pubcompass/internal/adapters/mq/queue"
	"pubcompass/internal/adapters/repository"
	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
	"pubcompass/internal/domain/refresh"
	"pubcompass/pkg/logger"
	"pubcompass/pkg/metrics"
)

const defaultQueueSize = 1024

// Fetcher retrieves the candidate set near an origin. The Overpass client
// implements it; tests substitute fakes.
type Fetcher interface {
	Nearby(ctx context.Context, origin geo.Coordinate) ([]model.Pub, error)
}

// Renderer receives every derived display frame. Implementations must not
// block: they are called from the tracker loop.
type Renderer interface {
	Render(frame model.Frame)
}

// Tracker consumes location, heading, selection and fetch-completion events
// in strict arrival order and derives the display state.
//
// All ApplicationState mutation happens on the single run-loop goroutine;
// everything else interacts with the Tracker through the event queue or
// through read-only snapshots.
type Tracker struct {
	mu sync.RWMutex

	// Collaborators
	store     repository.Store
	queue     eventqueue.Queue
	fetcher   Fetcher
	renderers []Renderer
	policy    *refresh.Policy

	// Configuration
	queueSize       int
	thresholdMeters float64

	// Loop-owned state. Never touched outside the run loop.
	state      model.State
	coord      *geo.Coordinate
	heading    *float64
	selection  string
	resolved   *model.Pub
	sorted     []model.Pub
	status     *model.Status
	candidates bool

	// Cross-goroutine snapshots
	inFlight  atomic.Bool
	lastFrame *model.Frame

	// Lifecycle
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithFetcher sets the candidate search collaborator. Required.
func WithFetcher(f Fetcher) Option {
	return func(t *Tracker) {
		if f != nil {
			t.fetcher = f
		}
	}
}

// WithStore sets a custom candidate store.
func WithStore(s repository.Store) Option {
	return func(t *Tracker) {
		if s != nil {
			t.store = s
		}
	}
}

// WithRenderer registers a rendering collaborator. May be used repeatedly.
func WithRenderer(r Renderer) Option {
	return func(t *Tracker) {
		if r != nil {
			t.renderers = append(t.renderers, r)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithQueueSize bounds the event queue.
func WithQueueSize(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.queueSize = n
		}
	}
}

// WithRefreshThreshold sets the movement threshold in meters.
func WithRefreshThreshold(m float64) Option {
	return func(t *Tracker) {
		if m > 0 {
			t.thresholdMeters = m
		}
	}
}

// New constructs a Tracker with default configuration.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		queueSize:       defaultQueueSize,
		thresholdMeters: refresh.DefaultThresholdMeters,
		state:           model.StateAwaitingFix,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start spins up the event loop. Safe to call once; later calls are no-ops.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}
	if t.fetcher == nil {
		return ErrNoFetcher
	}
	if t.logger == nil {
		t.logger = logger.Get().Named("tracker")
	}
	if t.store == nil {
		t.store = repository.NewMemStore(ctx)
	}
	t.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(t.queueSize))
	t.policy = refresh.NewPolicy(refresh.WithThresholdMeters(t.thresholdMeters))

	loopCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.run(loopCtx)

	t.started = true
	metrics.UpdateTrackerState(string(t.state))
	t.logger.Info(ctx, "tracker started",
		logger.Int("queueSize", t.queueSize),
		logger.Float64("refreshThresholdMeters", t.thresholdMeters),
	)
	return nil
}

// Stop releases the event loop and the queue. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.started = false
	t.mu.Unlock()

	_ = t.queue.Close()
	t.cancel()
	<-t.done
	t.logger.Info(context.Background(), "tracker stopped")
}

// SubmitFix feeds a location reading into the tracker.
// Returns false when the event queue rejected it.
func (t *Tracker) SubmitFix(ctx context.Context, c geo.Coordinate) bool {
	return t.enqueue(ctx, model.Event{Kind: model.EventFix, Fix: c})
}

// SubmitHeading feeds a compass heading (degrees, already mapped from raw
// sensor alpha) into the tracker.
func (t *Tracker) SubmitHeading(ctx context.Context, heading float64) bool {
	return t.enqueue(ctx, model.Event{Kind: model.EventHeading, Heading: heading})
}

// Select feeds a sticky user selection. An empty id clears the selection.
func (t *Tracker) Select(ctx context.Context, id string) bool {
	return t.enqueue(ctx, model.Event{Kind: model.EventSelect, Selection: id})
}

func (t *Tracker) enqueue(ctx context.Context, e model.Event) bool {
	t.mu.RLock()
	q := t.queue
	t.mu.RUnlock()
	if q == nil {
		return false
	}
	return q.Enqueue(ctx, e)
}

// LastFrame returns the most recent derived display frame, if any.
func (t *Tracker) LastFrame() (model.Frame, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastFrame == nil {
		return model.Frame{}, false
	}
	return *t.lastFrame, true
}

// GetStats returns service statistics for monitoring.
func (t *Tracker) GetStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         t.started,
		"queueSize":       t.queueSize,
		"refreshInFlight": t.inFlight.Load(),
	}
	if t.lastFrame != nil {
		stats["state"] = string(t.lastFrame.State)
	} else {
		stats["state"] = string(model.StateAwaitingFix)
	}
	if t.started {
		stats["queueLength"] = t.queue.Len(ctx)
		stats["candidates"] = t.store.Count(ctx)
	}
	return stats
}
