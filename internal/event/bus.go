package event

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler processes a single event. Handlers must not assume any particular
// goroutine; the bus invokes them synchronously on the publishing goroutine.
type Handler func(ctx context.Context, e Event)

// Bus is an in-process publish/subscribe fanout keyed by event name.
// Handler panics are recovered and logged so a broken subscriber can never
// fail the request that raised the event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the named event. Intended for startup
// wiring; subscribing after publishing has begun is safe but unusual.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers the event to every subscribed handler immediately.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Name()]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(ctx, h, e)
	}
}

// Raise defers the event until the surrounding transaction commits. If the
// context carries no transaction queue, the event is published immediately.
func (b *Bus) Raise(ctx context.Context, e Event) {
	if q := queueFrom(ctx); q != nil {
		q.add(e)
		return
	}
	b.Publish(ctx, e)
}

func (b *Bus) invoke(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", e.Name()),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}

type queueKey struct{}

// Queue buffers events raised inside a transaction. The transaction runner
// drains it after COMMIT and discards it on rollback, which gives the
// commit-before-dispatch ordering the notification pipeline depends on.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// WithQueue attaches a fresh deferred-event queue to the context.
func WithQueue(ctx context.Context) (context.Context, *Queue) {
	q := &Queue{}
	return context.WithValue(ctx, queueKey{}, q), q
}

func queueFrom(ctx context.Context) *Queue {
	q, _ := ctx.Value(queueKey{}).(*Queue)
	return q
}

func (q *Queue) add(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
}

// Drain publishes every buffered event in raise order and empties the queue.
// Call only after the owning transaction has committed.
func (q *Queue) Drain(ctx context.Context, b *Bus) {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()

	for _, e := range events {
		b.Publish(ctx, e)
	}
}

// Discard drops buffered events without publishing. Called on rollback.
func (q *Queue) Discard() {
	q.mu.Lock()
	q.events = nil
	q.mu.Unlock()
}
