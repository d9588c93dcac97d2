package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultQueueSize     = 1024
	defaultMaxAttempts   = 5
	defaultRetryBackoff  = 250 * time.Millisecond
	defaultFlushInterval = time.Second
)

// Writer decouples audit appends from the authorization decision path.
// Append enqueues without blocking; a background goroutine delivers to
// the wrapped store with retries. Events that outlive every retry are
// reported through the failure hook and the log, never to the caller of
// the guarded action.
type Writer struct {
	store     Store
	logger    *slog.Logger
	onFailure func()

	queue         chan Event
	maxAttempts   int
	retryBackoff  time.Duration
	flushInterval time.Duration

	mu       sync.Mutex
	overflow []Event
}

// WriterOption tunes a Writer.
type WriterOption func(*Writer)

// WithQueueSize sets the in-flight buffer capacity.
func WithQueueSize(n int) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.queue = make(chan Event, n)
		}
	}
}

// WithRetry sets the delivery retry policy against the wrapped store.
func WithRetry(attempts int, backoff time.Duration) WriterOption {
	return func(w *Writer) {
		if attempts > 0 {
			w.maxAttempts = attempts
		}
		if backoff > 0 {
			w.retryBackoff = backoff
		}
	}
}

// NewWriter wraps a store with buffered, retried delivery. The failure
// hook fires once per event abandoned after all retries.
func NewWriter(store Store, logger *slog.Logger, onFailure func(), opts ...WriterOption) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		store:         store,
		logger:        logger,
		onFailure:     onFailure,
		queue:         make(chan Event, defaultQueueSize),
		maxAttempts:   defaultMaxAttempts,
		retryBackoff:  defaultRetryBackoff,
		flushInterval: defaultFlushInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Append enqueues the event and returns immediately. A full queue spills
// into an overflow buffer rather than blocking or dropping.
func (w *Writer) Append(ctx context.Context, ev Event) error {
	select {
	case w.queue <- ev:
	default:
		w.mu.Lock()
		w.overflow = append(w.overflow, ev)
		w.mu.Unlock()
	}
	return nil
}

// Query reads through to the wrapped store. Events still in flight are
// not visible until delivered.
func (w *Writer) Query(ctx context.Context, f Filter) ([]Event, error) {
	return w.store.Query(ctx, f)
}

// Run delivers queued events until the context is cancelled, then drains
// whatever is still buffered before returning.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case ev := <-w.queue:
			w.deliver(ev)
		case <-ticker.C:
			w.requeueOverflow()
		}
	}
}

// Flush synchronously delivers everything currently buffered. Intended
// for shutdown paths and tests.
func (w *Writer) Flush() {
	w.drain()
}

func (w *Writer) drain() {
	w.requeueOverflow()
	for {
		select {
		case ev := <-w.queue:
			w.deliver(ev)
		default:
			w.mu.Lock()
			pending := len(w.overflow)
			w.mu.Unlock()
			if pending == 0 && len(w.queue) == 0 {
				return
			}
			w.requeueOverflow()
			if len(w.queue) == 0 {
				return
			}
		}
	}
}

func (w *Writer) requeueOverflow() {
	w.mu.Lock()
	pending := w.overflow
	w.overflow = nil
	w.mu.Unlock()
	for i, ev := range pending {
		select {
		case w.queue <- ev:
		default:
			// Queue filled up again; keep the rest for the next tick.
			w.mu.Lock()
			w.overflow = append(w.overflow, pending[i:]...)
			w.mu.Unlock()
			return
		}
	}
}

// deliver retries against the store with linear backoff. Store appends
// are idempotent on event id, so redelivery after a transient failure
// cannot duplicate the record.
func (w *Writer) deliver(ev Event) {
	ctx := context.Background()
	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = w.store.Append(attemptCtx, ev)
		cancel()
		if err == nil {
			return
		}
		if attempt < w.maxAttempts {
			time.Sleep(w.retryBackoff * time.Duration(attempt))
		}
	}
	w.logger.Error("audit delivery abandoned",
		slog.String("event_id", ev.ID),
		slog.String("event_type", string(ev.Type)),
		slog.Int("attempts", w.maxAttempts),
		slog.Any("error", err))
	if w.onFailure != nil {
		w.onFailure()
	}
}
