// Package worker defines the single append writer draining the submission queue.
//
// There is deliberately exactly one writer. The answer file has no locking,
// so serializing all appends through one goroutine is what keeps a
// submission's three rows contiguous when two sessions submit at once.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/atsr/internal/adapters/mq/queue"
	"github.com/okian/atsr/internal/adapters/store"
	"github.com/okian/atsr/pkg/logger"
	"github.com/okian/atsr/pkg/metrics"
)

// Queue defines how the writer receives submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Submission
}

// Writer drains the submission queue into the answer store.
type Writer struct {
	queue queue.Queue
	store store.Store
	name  string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewWriter creates the append writer with configuration options.
func NewWriter(q queue.Queue, s store.Store, opts ...Option) *Writer {
	w := &Writer{
		queue:    q,
		store:    s,
		name:     "writer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("writer"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the writer loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, subs)
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.persist(ctx, sub); err != nil {
				w.logger.Error(ctx, "error persisting submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the writer. Queued submissions are flushed to the
// store before it returns.
func (w *Writer) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// drainGrace is how long drain waits for an in-flight submission before
// consulting the queue length.
const drainGrace = 50 * time.Millisecond

// drain flushes whatever is still buffered at shutdown. The dequeue channel
// is fed by a pump goroutine, so an empty queue alone does not mean nothing
// is in flight; wait a grace period before concluding the queue is dry.
func (w *Writer) drain(ctx context.Context, subs <-chan queue.Submission) {
	for {
		select {
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.persist(ctx, sub); err != nil {
				w.logger.Error(ctx, "error persisting submission during drain", logger.Error(err))
			}
		case <-time.After(drainGrace):
			if w.queue.Len(ctx) == 0 {
				return
			}
		}
	}
}

// persist appends one submission's records as a single batch.
func (w *Writer) persist(ctx context.Context, sub queue.Submission) error {
	if err := w.store.Append(ctx, sub.Records); err != nil {
		return fmt.Errorf("append submission %s: %w", sub.ID, err)
	}
	metrics.RecordSubmissionAccepted()
	w.logger.Info(ctx, "submission persisted",
		logger.String("submissionID", sub.ID),
		logger.String("evaluator", sub.Evaluator),
		logger.Int("records", len(sub.Records)),
	)
	return nil
}
