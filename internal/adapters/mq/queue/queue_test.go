package queue_test

import (
	"context"
	"testing"

	"pubcompass/internal/adapters/mq/queue"
	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"

	"github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a small in-memory queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		convey.Convey("When enqueueing within capacity", func() {
			ok1 := q.Enqueue(ctx, model.Event{Kind: model.EventFix, Fix: geo.Coordinate{Lat: 1}})
			ok2 := q.Enqueue(ctx, model.Event{Kind: model.EventHeading, Heading: 90})

			convey.Convey("Then both are accepted and order is preserved", func() {
				convey.So(ok1, convey.ShouldBeTrue)
				convey.So(ok2, convey.ShouldBeTrue)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)

				ch := q.Dequeue(ctx)
				first := <-ch
				second := <-ch
				convey.So(first.Kind, convey.ShouldEqual, model.EventFix)
				convey.So(second.Kind, convey.ShouldEqual, model.EventHeading)
			})
		})

		convey.Convey("When the queue is full", func() {
			convey.So(q.Enqueue(ctx, model.Event{Kind: model.EventFix}), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, model.Event{Kind: model.EventFix}), convey.ShouldBeTrue)

			convey.Convey("Then the next enqueue is rejected instead of blocking", func() {
				convey.So(q.Enqueue(ctx, model.Event{Kind: model.EventFix}), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When enqueueing in blocking mode", func() {
			convey.So(q.EnqueueBlocking(ctx, model.Event{Kind: model.EventFetchDone}), convey.ShouldBeTrue)

			convey.Convey("Then a full queue waits on the context instead of dropping", func() {
				convey.So(q.EnqueueBlocking(ctx, model.Event{Kind: model.EventFix}), convey.ShouldBeTrue)

				cancelCtx, cancel := context.WithCancel(ctx)
				cancel()
				convey.So(q.EnqueueBlocking(cancelCtx, model.Event{Kind: model.EventFix}), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then enqueues are rejected and closing again is harmless", func() {
				convey.So(q.Enqueue(ctx, model.Event{Kind: model.EventFix}), convey.ShouldBeFalse)
				convey.So(q.Close(), convey.ShouldBeNil)
			})

			convey.Convey("And the dequeue channel is closed", func() {
				_, open := <-q.Dequeue(ctx)
				convey.So(open, convey.ShouldBeFalse)
			})
		})
	})
}
