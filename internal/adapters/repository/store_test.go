package repository_test

import (
	"context"
	"testing"

	"pubcompass/internal/adapters/repository"
	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"

	"github.com/smartystreets/goconvey/convey"
)

func TestResolveTarget(t *testing.T) {
	convey.Convey("Given a store with three pubs", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)
		origin := geo.Coordinate{Lat: 51.5000, Lon: -0.1200}

		near := model.Pub{ID: "node/1", Name: "The Near", Location: geo.Coordinate{Lat: 51.5005, Lon: -0.1200}}
		mid := model.Pub{ID: "node/2", Name: "The Middle", Location: geo.Coordinate{Lat: 51.5050, Lon: -0.1200}}
		far := model.Pub{ID: "node/3", Name: "The Far", Location: geo.Coordinate{Lat: 51.5500, Lon: -0.1200}}
		store.ReplaceCandidates(ctx, []model.Pub{far, near, mid})

		convey.Convey("When no selection is set", func() {
			got, ok := store.ResolveTarget(ctx, origin, "")

			convey.Convey("Then the nearest pub wins", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.ID, convey.ShouldEqual, near.ID)
			})
		})

		convey.Convey("When a farther pub is explicitly selected", func() {
			got, ok := store.ResolveTarget(ctx, origin, far.ID)

			convey.Convey("Then the selection sticks regardless of distance", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.ID, convey.ShouldEqual, far.ID)
			})
		})

		convey.Convey("When the selected pub vanishes on the next refresh", func() {
			store.ReplaceCandidates(ctx, []model.Pub{mid, near})
			got, ok := store.ResolveTarget(ctx, origin, far.ID)

			convey.Convey("Then resolution falls back to the nearest", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.ID, convey.ShouldEqual, near.ID)
			})
		})

		convey.Convey("When two pubs sit at exactly the same distance", func() {
			twinA := model.Pub{ID: "node/10", Location: geo.Coordinate{Lat: 51.5010, Lon: -0.1200}}
			twinB := model.Pub{ID: "node/11", Location: twinA.Location}
			store.ReplaceCandidates(ctx, []model.Pub{twinA, twinB})
			got, ok := store.ResolveTarget(ctx, origin, "")

			convey.Convey("Then the first inserted wins", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.ID, convey.ShouldEqual, twinA.ID)
			})
		})

		convey.Convey("When the set is replaced with nothing", func() {
			store.ReplaceCandidates(ctx, nil)
			_, ok := store.ResolveTarget(ctx, origin, "")

			convey.Convey("Then no target resolves", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})
	})
}

func TestSortedByDistance(t *testing.T) {
	convey.Convey("Given a store populated out of order", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)
		origin := geo.Coordinate{Lat: 51.5000, Lon: -0.1200}

		near := model.Pub{ID: "a", Location: geo.Coordinate{Lat: 51.5005, Lon: -0.1200}}
		mid := model.Pub{ID: "b", Location: geo.Coordinate{Lat: 51.5050, Lon: -0.1200}}
		far := model.Pub{ID: "c", Location: geo.Coordinate{Lat: 51.5500, Lon: -0.1200}}
		store.ReplaceCandidates(ctx, []model.Pub{far, near, mid})

		convey.Convey("When sorting by distance from the origin", func() {
			got := store.SortedByDistance(ctx, origin)

			convey.Convey("Then the order is ascending", func() {
				convey.So(len(got), convey.ShouldEqual, 3)
				convey.So(got[0].ID, convey.ShouldEqual, "a")
				convey.So(got[1].ID, convey.ShouldEqual, "b")
				convey.So(got[2].ID, convey.ShouldEqual, "c")
			})

			convey.Convey("And sorting again yields the identical order", func() {
				again := store.SortedByDistance(ctx, origin)
				convey.So(again, convey.ShouldResemble, got)
			})

			convey.Convey("And the stored insertion order is untouched", func() {
				// A different origin flips the ordering without corrupting
				// the stored set.
				south := geo.Coordinate{Lat: 51.6000, Lon: -0.1200}
				flipped := store.SortedByDistance(ctx, south)
				convey.So(flipped[0].ID, convey.ShouldEqual, "c")

				resolved, ok := store.ResolveTarget(ctx, origin, "")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(resolved.ID, convey.ShouldEqual, "a")
			})
		})

		convey.Convey("When the store is empty", func() {
			store.ReplaceCandidates(ctx, nil)

			convey.Convey("Then sorting returns an empty slice and Count is zero", func() {
				convey.So(store.SortedByDistance(ctx, origin), convey.ShouldBeEmpty)
				convey.So(store.Count(ctx), convey.ShouldEqual, 0)
			})
		})
	})
}
