package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"pubcompass/internal/app"
	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
	"pubcompass/pkg/logger"

	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeFetcher counts calls and answers from a swappable handler. An optional
// release channel holds calls open to exercise the in-flight guard.
type fakeFetcher struct {
	calls   atomic.Int64
	handler atomic.Value // func() ([]model.Pub, error)
	release chan struct{}
}

func newFakeFetcher(pubs []model.Pub, err error) *fakeFetcher {
	f := &fakeFetcher{}
	f.respond(pubs, err)
	return f
}

func (f *fakeFetcher) respond(pubs []model.Pub, err error) {
	f.handler.Store(func() ([]model.Pub, error) { return pubs, err })
}

func (f *fakeFetcher) Nearby(ctx context.Context, _ geo.Coordinate) ([]model.Pub, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.handler.Load().(func() ([]model.Pub, error))()
}

// fakeRenderer forwards frames to a channel so tests can await them.
type fakeRenderer struct {
	frames chan model.Frame
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{frames: make(chan model.Frame, 64)}
}

func (r *fakeRenderer) Render(frame model.Frame) {
	r.frames <- frame
}

func (r *fakeRenderer) next(t *testing.T) model.Frame {
	t.Helper()
	select {
	case f := <-r.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return model.Frame{}
	}
}

// nextWhere drains frames until the predicate matches. Needed because a fix
// publishes once immediately and once more when its fetch completes.
func (r *fakeRenderer) nextWhere(t *testing.T, pred func(model.Frame) bool) model.Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-r.frames:
			if pred(f) {
				return f
			}
		case <-deadline:
			t.Fatal("timed out waiting for a matching frame")
			return model.Frame{}
		}
	}
}

func ready(f model.Frame) bool { return f.State == model.StateReady }

var (
	home = geo.Coordinate{Lat: 51.5007, Lon: -0.1246}

	crown  = model.Pub{ID: "node/1", Name: "The Crown", Location: geo.Coordinate{Lat: 51.5015, Lon: -0.1246}}
	anchor = model.Pub{ID: "node/2", Name: "The Anchor", Location: geo.Coordinate{Lat: 51.5100, Lon: -0.1246}}
	noName = model.Pub{ID: "node/3", Location: geo.Coordinate{Lat: 51.5020, Lon: -0.1246}}
)

// offsetNorth shifts a coordinate roughly the given number of meters north.
func offsetNorth(c geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{Lat: c.Lat + meters/111320.0, Lon: c.Lon}
}

func startTracker(t *testing.T, fetcher *fakeFetcher, renderer *fakeRenderer, opts ...app.Option) *app.Tracker {
	t.Helper()
	opts = append([]app.Option{
		app.WithFetcher(fetcher),
		app.WithRenderer(renderer),
	}, opts...)
	tracker := app.New(opts...)
	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("start tracker: %v", err)
	}
	t.Cleanup(tracker.Stop)
	return tracker
}

func TestTrackerLifecycle(t *testing.T) {
	convey.Convey("Given a tracker without a fetcher", t, func() {
		tracker := app.New()

		convey.Convey("Then Start refuses to run", func() {
			err := tracker.Start(context.Background())
			convey.So(errors.Is(err, app.ErrNoFetcher), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a started tracker", t, func() {
		tracker := startTracker(t, newFakeFetcher(nil, nil), newFakeRenderer())

		convey.Convey("Then Stop is idempotent", func() {
			tracker.Stop()
			tracker.Stop()
		})

		convey.Convey("Then a second Start is a no-op", func() {
			convey.So(tracker.Start(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestTrackerFlow(t *testing.T) {
	convey.Convey("Given a tracker with two pubs in range", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{anchor, crown}, nil)
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		convey.Convey("When the first fix arrives", func() {
			convey.So(tracker.SubmitFix(ctx, home), convey.ShouldBeTrue)
			first := renderer.next(t)

			convey.Convey("Then the display leaves the fix-waiting state immediately", func() {
				convey.So(first.State, convey.ShouldEqual, model.StateAwaitingCandidates)
				convey.So(first.TargetID, convey.ShouldBeEmpty)
			})

			convey.Convey("And the fetch completion promotes the display to ready", func() {
				frame := renderer.nextWhere(t, ready)
				convey.So(frame.TargetID, convey.ShouldEqual, crown.ID)
				convey.So(frame.TargetName, convey.ShouldEqual, "The Crown")
				convey.So(frame.DistanceLabel, convey.ShouldEqual, "89m")
				convey.So(frame.Status, convey.ShouldBeNil)
				convey.So(len(frame.Candidates), convey.ShouldEqual, 2)
				convey.So(frame.Candidates[0].ID, convey.ShouldEqual, crown.ID)
				convey.So(frame.Candidates[0].Selected, convey.ShouldBeTrue)
				convey.So(frame.Candidates[1].Selected, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a heading arrives after the display is ready", func() {
			tracker.SubmitFix(ctx, home)
			renderer.nextWhere(t, ready)

			// The Crown sits due north, so facing east the needle points
			// 90 degrees to the left.
			convey.So(tracker.SubmitHeading(ctx, 90), convey.ShouldBeTrue)
			frame := renderer.next(t)

			convey.Convey("Then the rotation tracks the relative bearing", func() {
				convey.So(frame.HeadingDeg, convey.ShouldEqual, 90)
				convey.So(frame.RotationDeg, convey.ShouldAlmostEqual, -90, 0.5)
				convey.So(frame.Cardinal, convey.ShouldEqual, "N")
			})

			convey.Convey("And no extra fetch was triggered", func() {
				convey.So(fetcher.calls.Load(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a heading arrives before any fix", func() {
			convey.So(tracker.SubmitHeading(ctx, 45), convey.ShouldBeTrue)

			convey.Convey("Then no frame is rendered but the heading is kept", func() {
				tracker.SubmitFix(ctx, home)
				frame := renderer.nextWhere(t, ready)
				convey.So(frame.HeadingDeg, convey.ShouldEqual, 45)
			})
		})
	})
}

func TestTrackerRefreshPolicy(t *testing.T) {
	convey.Convey("Given a tracker that already fetched once", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{crown}, nil)
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		tracker.SubmitFix(ctx, home)
		renderer.nextWhere(t, ready)

		convey.Convey("When the next fix is a 100m drift", func() {
			tracker.SubmitFix(ctx, offsetNorth(home, 100))
			frame := renderer.next(t)

			convey.Convey("Then distances update without a refetch", func() {
				convey.So(fetcher.calls.Load(), convey.ShouldEqual, 1)
				convey.So(frame.State, convey.ShouldEqual, model.StateReady)
				convey.So(frame.DistanceLabel, convey.ShouldNotEqual, "89m")
			})
		})

		convey.Convey("When the next fix is a 300m move", func() {
			tracker.SubmitFix(ctx, offsetNorth(home, 300))
			renderer.nextWhere(t, func(f model.Frame) bool {
				return ready(f) && fetcher.calls.Load() == 2
			})

			convey.Convey("Then a second fetch ran", func() {
				convey.So(fetcher.calls.Load(), convey.ShouldEqual, 2)
			})
		})
	})

	convey.Convey("Given a fetch that is still in flight", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{crown}, nil)
		fetcher.release = make(chan struct{})
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		tracker.SubmitFix(ctx, home)
		renderer.next(t)

		convey.Convey("When further qualifying moves arrive meanwhile", func() {
			tracker.SubmitFix(ctx, offsetNorth(home, 300))
			renderer.next(t)
			tracker.SubmitFix(ctx, offsetNorth(home, 600))
			renderer.next(t)

			close(fetcher.release)
			renderer.nextWhere(t, ready)

			convey.Convey("Then they were dropped, not queued", func() {
				convey.So(fetcher.calls.Load(), convey.ShouldEqual, 1)
			})

			convey.Convey("And the next qualifying move fetches again", func() {
				tracker.SubmitFix(ctx, offsetNorth(home, 900))
				renderer.nextWhere(t, func(f model.Frame) bool {
					return ready(f) && fetcher.calls.Load() == 2
				})
				convey.So(fetcher.calls.Load(), convey.ShouldEqual, 2)
			})
		})
	})
}

func TestTrackerFetchFailure(t *testing.T) {
	convey.Convey("Given a tracker whose search backend is down", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher(nil, errors.New("overpass: unexpected status: 504"))
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		convey.Convey("When the first fix triggers a failing fetch", func() {
			tracker.SubmitFix(ctx, home)
			renderer.next(t)
			frame := renderer.nextWhere(t, func(f model.Frame) bool { return f.Status != nil })

			convey.Convey("Then the state machine stays where it was", func() {
				convey.So(frame.State, convey.ShouldEqual, model.StateAwaitingCandidates)
				convey.So(frame.Status.Level, convey.ShouldEqual, model.StatusError)
			})

			convey.Convey("And a later qualifying move retries and recovers", func() {
				fetcher.respond([]model.Pub{crown}, nil)
				tracker.SubmitFix(ctx, offsetNorth(home, 300))
				frame := renderer.nextWhere(t, ready)
				convey.So(frame.Status, convey.ShouldBeNil)
				convey.So(frame.TargetID, convey.ShouldEqual, crown.ID)
			})
		})
	})

	convey.Convey("Given a tracker that already has candidates", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{crown, anchor}, nil)
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		tracker.SubmitFix(ctx, home)
		renderer.nextWhere(t, ready)

		convey.Convey("When a refresh fails", func() {
			fetcher.respond(nil, errors.New("overpass: request failed"))
			tracker.SubmitFix(ctx, offsetNorth(home, 300))
			frame := renderer.nextWhere(t, func(f model.Frame) bool { return f.Status != nil })

			convey.Convey("Then the previous candidate set keeps serving the display", func() {
				convey.So(frame.State, convey.ShouldEqual, model.StateReady)
				convey.So(len(frame.Candidates), convey.ShouldEqual, 2)
				convey.So(frame.TargetID, convey.ShouldEqual, crown.ID)
			})
		})
	})
}

func TestTrackerSelection(t *testing.T) {
	convey.Convey("Given a ready tracker with several candidates", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{crown, anchor, noName}, nil)
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		tracker.SubmitFix(ctx, home)
		renderer.nextWhere(t, ready)

		convey.Convey("When the user picks a non-nearest pub", func() {
			convey.So(tracker.Select(ctx, anchor.ID), convey.ShouldBeTrue)
			frame := renderer.next(t)

			convey.Convey("Then it becomes the target", func() {
				convey.So(frame.TargetID, convey.ShouldEqual, anchor.ID)
				convey.So(frame.DistanceLabel, convey.ShouldEqual, "1.03km")
			})

			convey.Convey("And it stays the target after a refresh that still has it", func() {
				tracker.SubmitFix(ctx, offsetNorth(home, 300))
				refreshed := renderer.nextWhere(t, func(f model.Frame) bool {
					return ready(f) && fetcher.calls.Load() == 2
				})
				convey.So(refreshed.TargetID, convey.ShouldEqual, anchor.ID)
			})

			convey.Convey("And the display falls back to nearest when it vanishes", func() {
				fetcher.respond([]model.Pub{crown, noName}, nil)
				tracker.SubmitFix(ctx, offsetNorth(home, 300))
				refreshed := renderer.nextWhere(t, func(f model.Frame) bool {
					return ready(f) && len(f.Candidates) == 2
				})
				convey.So(refreshed.TargetID, convey.ShouldEqual, noName.ID)
			})
		})

		convey.Convey("When the nameless pub becomes the target", func() {
			convey.So(tracker.Select(ctx, noName.ID), convey.ShouldBeTrue)
			frame := renderer.next(t)

			convey.Convey("Then it is labelled with the placeholder name", func() {
				convey.So(frame.TargetName, convey.ShouldEqual, "Unnamed Pub")
			})
		})

		convey.Convey("When the selection is cleared", func() {
			tracker.Select(ctx, anchor.ID)
			renderer.next(t)
			tracker.Select(ctx, "")
			frame := renderer.next(t)

			convey.Convey("Then the nearest pub takes over again", func() {
				convey.So(frame.TargetID, convey.ShouldEqual, crown.ID)
			})
		})
	})

	convey.Convey("Given a fetch that finds nothing", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{}, nil)
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		convey.Convey("When the fix and the empty result land", func() {
			tracker.SubmitFix(ctx, home)
			frame := renderer.nextWhere(t, ready)

			convey.Convey("Then the display is ready with no target", func() {
				convey.So(frame.TargetID, convey.ShouldBeEmpty)
				convey.So(frame.Candidates, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestTrackerSnapshots(t *testing.T) {
	convey.Convey("Given a started tracker", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher([]model.Pub{crown}, nil)
		renderer := newFakeRenderer()
		tracker := startTracker(t, fetcher, renderer)

		convey.Convey("Then LastFrame is empty before any event", func() {
			_, ok := tracker.LastFrame()
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When frames have been rendered", func() {
			tracker.SubmitFix(ctx, home)
			want := renderer.nextWhere(t, ready)

			convey.Convey("Then LastFrame matches the latest render", func() {
				got, ok := tracker.LastFrame()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.State, convey.ShouldEqual, want.State)
				convey.So(got.TargetID, convey.ShouldEqual, want.TargetID)
			})

			convey.Convey("And GetStats reports the running state", func() {
				stats := tracker.GetStats()
				convey.So(stats["started"], convey.ShouldBeTrue)
				convey.So(stats["state"], convey.ShouldEqual, "ready")
				convey.So(stats["candidates"], convey.ShouldEqual, 1)
			})
		})
	})
}
