package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	queue "github.com/okian/atsr/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func testSubmission(id string) queue.Submission {
	return queue.Submission{ID: id, Evaluator: "Ana", Subgroup: "Subgrupo 01"}
}

func TestInMemoryQueue_Enqueue(t *testing.T) {
	Convey("Given a new in-memory queue", t, func() {
		q := queue.NewInMemoryQueue()
		ctx := context.Background()

		Convey("When enqueueing a submission", func() {
			ok := q.Enqueue(ctx, testSubmission("sub-1"))

			Convey("Then it should be accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue should be refused", func() {
				So(q.Enqueue(ctx, testSubmission("sub-1")), ShouldBeFalse)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		ctx := context.Background()

		Convey("When enqueueing past capacity", func() {
			So(q.Enqueue(ctx, testSubmission("sub-1")), ShouldBeTrue)
			So(q.Enqueue(ctx, testSubmission("sub-2")), ShouldBeTrue)
			full := q.Enqueue(ctx, testSubmission("sub-3"))

			Convey("Then the overflow enqueue should return false instead of blocking", func() {
				So(full, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})
	})
}

func TestInMemoryQueue_Dequeue(t *testing.T) {
	Convey("Given a queue with buffered submissions", t, func() {
		q := queue.NewInMemoryQueue()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		for i := 1; i <= 3; i++ {
			So(q.Enqueue(ctx, testSubmission(fmt.Sprintf("sub-%d", i))), ShouldBeTrue)
		}

		Convey("When dequeueing", func() {
			out := q.Dequeue(ctx)

			Convey("Then submissions should arrive in FIFO order", func() {
				for i := 1; i <= 3; i++ {
					select {
					case sub := <-out:
						So(sub.ID, ShouldEqual, fmt.Sprintf("sub-%d", i))
					case <-time.After(time.Second):
						t.Fatal("timed out waiting for submission")
					}
				}
			})
		})

		Convey("When the queue is closed after draining", func() {
			out := q.Dequeue(ctx)
			for i := 0; i < 3; i++ {
				<-out
			}
			So(q.Close(), ShouldBeNil)

			Convey("Then the dequeue channel should close", func() {
				select {
				case _, open := <-out:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for channel close")
				}
			})
		})
	})
}

func TestInMemoryQueue_Close(t *testing.T) {
	Convey("Given an open queue", t, func() {
		q := queue.NewInMemoryQueue()

		Convey("When closing it twice", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then the second close should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
