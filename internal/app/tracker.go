package app

import (
	"context"
	"time"

	"pubcompass/internal/domain/display"
	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
	"pubcompass/pkg/logger"
	"pubcompass/pkg/metrics"
)

// run is the single consumer of the event queue. Handlers observe and mutate
// tracker state strictly in the order events were delivered.
func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	events := t.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			t.handle(ctx, e)
		}
	}
}

func (t *Tracker) handle(ctx context.Context, e model.Event) {
	switch e.Kind {
	case model.EventFix:
		t.handleFix(ctx, e.Fix)
	case model.EventHeading:
		t.handleHeading(ctx, e.Heading)
	case model.EventSelect:
		t.handleSelect(ctx, e.Selection)
	case model.EventFetchDone:
		t.handleFetchDone(ctx, e.Candidates, e.FetchErr)
	}
}

// handleFix stores the new coordinate, consults the refresh policy against
// the previous one, and recomputes the derived display.
func (t *Tracker) handleFix(ctx context.Context, c geo.Coordinate) {
	metrics.RecordFix()

	prev := t.coord
	t.coord = &c

	if t.state == model.StateAwaitingFix {
		t.state = model.StateAwaitingCandidates
	}

	if t.policy.ShouldRefresh(prev, c) {
		t.startFetch(ctx, c)
	}

	// Movement shifts every distance and bearing even when the candidate
	// set is unchanged.
	t.recomputeTarget(ctx)
	t.publish(ctx)
}

// handleHeading is the cheap path: no target re-resolution, just a new
// rotation for the already-resolved target.
func (t *Tracker) handleHeading(ctx context.Context, heading float64) {
	metrics.RecordHeadingEvent()

	t.heading = &heading
	if t.state != model.StateReady {
		// Stored for later; there is nothing to point at yet.
		return
	}
	t.publish(ctx)
}

func (t *Tracker) handleSelect(ctx context.Context, id string) {
	metrics.RecordSelection()

	t.selection = id
	t.recomputeTarget(ctx)
	t.publish(ctx)
}

// handleFetchDone applies a completed candidate fetch. The in-flight slot is
// cleared unconditionally so the next qualifying movement can fetch again.
func (t *Tracker) handleFetchDone(ctx context.Context, pubs []model.Pub, fetchErr error) {
	t.inFlight.Store(false)

	if fetchErr != nil {
		metrics.RecordFetchFailure()
		t.logger.Warn(ctx, "candidate fetch failed", logger.Error(fetchErr))
		// Candidate set stays untouched; the error is a transient status.
		t.status = &model.Status{Level: model.StatusError, Message: "Pub search failed. Move around to retry."}
		t.publish(ctx)
		return
	}

	t.store.ReplaceCandidates(ctx, pubs)
	t.candidates = true
	t.status = nil
	metrics.UpdateCandidateCount(len(pubs))

	if t.coord != nil {
		t.state = model.StateReady
	}
	t.recomputeTarget(ctx)
	t.publish(ctx)

	t.logger.Info(ctx, "candidates replaced", logger.Int("count", len(pubs)))
}

// startFetch launches at most one candidate fetch. A request arriving while
// one is outstanding is dropped, not queued.
func (t *Tracker) startFetch(ctx context.Context, origin geo.Coordinate) {
	if !t.inFlight.CompareAndSwap(false, true) {
		metrics.RecordRefreshSuppressed()
		return
	}
	metrics.RecordRefreshTriggered()

	go func() {
		start := time.Now()
		pubs, err := t.fetcher.Nearby(ctx, origin)
		metrics.RecordFetchDuration(time.Since(start).Seconds())
		// Completion must reach the loop even under queue pressure,
		// otherwise the in-flight slot would stay occupied forever.
		t.queue.EnqueueBlocking(ctx, model.Event{
			Kind:       model.EventFetchDone,
			Candidates: pubs,
			FetchErr:   err,
		})
	}()
}

// recomputeTarget refreshes the resolved target and the sorted candidate
// list from the repository. Only called when coordinate, candidate set or
// selection changed.
func (t *Tracker) recomputeTarget(ctx context.Context) {
	if t.coord == nil || !t.candidates {
		t.resolved = nil
		t.sorted = nil
		return
	}
	if target, ok := t.store.ResolveTarget(ctx, *t.coord, t.selection); ok {
		t.resolved = &target
	} else {
		t.resolved = nil
	}
	t.sorted = t.store.SortedByDistance(ctx, *t.coord)
}

// publish derives the display frame from current state, snapshots it for
// HTTP readers, and hands it to every renderer.
func (t *Tracker) publish(_ context.Context) {
	frame := t.buildFrame()

	t.mu.Lock()
	t.lastFrame = &frame
	t.mu.Unlock()

	for _, r := range t.renderers {
		r.Render(frame)
	}
	metrics.RecordFrameRendered()
	metrics.UpdateTrackerState(string(t.state))
}

func (t *Tracker) buildFrame() model.Frame {
	frame := model.Frame{State: t.state, Status: t.status}

	var heading float64
	if t.heading != nil {
		heading = *t.heading
		frame.HeadingDeg = heading
	}

	if t.state != model.StateReady || t.coord == nil {
		return frame
	}

	if t.resolved != nil {
		target := *t.resolved
		meters := geo.DistanceMeters(*t.coord, target.Location)
		bearing := geo.InitialBearingDegrees(*t.coord, target.Location)

		frame.TargetID = target.ID
		frame.TargetName = display.Name(target.Name)
		frame.DistanceLabel = display.DistanceLabel(meters)
		frame.BearingDeg = bearing
		frame.RotationDeg = geo.RelativeBearing(bearing, heading)
		frame.Cardinal = display.Cardinal(bearing)
	}

	frame.Candidates = make([]model.Candidate, 0, len(t.sorted))
	for _, p := range t.sorted {
		meters := geo.DistanceMeters(*t.coord, p.Location)
		frame.Candidates = append(frame.Candidates, model.Candidate{
			ID:            p.ID,
			Name:          display.Name(p.Name),
			DistanceLabel: display.DistanceLabel(meters),
			Meters:        meters,
			Selected:      t.resolved != nil && p.ID == t.resolved.ID,
		})
	}
	return frame
}
