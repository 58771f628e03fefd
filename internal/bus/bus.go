// Package bus is the in-process pub/sub decoupling the MQTT subscriber from
// the persistence handlers. Each topic carries one normalized record kind and
// has at most one listener, registered once at boot. Delivery is synchronous
// and in publish order; a message published with no listener is dropped with
// a warning.
package bus

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/camwatch/frigate-ingestor/internal/normalize"
)

// Topic is a single-listener typed channel.
type Topic[T any] struct {
	name   string
	logger *zap.Logger

	mu       sync.RWMutex
	listener func(context.Context, T)
}

func newTopic[T any](name string, logger *zap.Logger) *Topic[T] {
	return &Topic[T]{name: name, logger: logger}
}

// Subscribe registers the listener. A second call replaces the first; the
// orchestrator registers exactly one per topic.
func (t *Topic[T]) Subscribe(fn func(context.Context, T)) {
	t.mu.Lock()
	t.listener = fn
	t.mu.Unlock()
}

// Publish delivers msg to the listener synchronously. With no listener the
// message is dropped.
func (t *Topic[T]) Publish(ctx context.Context, msg T) {
	t.mu.RLock()
	fn := t.listener
	t.mu.RUnlock()

	if fn == nil {
		t.logger.Warn("message dropped: no listener", zap.String("topic", t.name))
		return
	}
	fn(ctx, msg)
}

// Bus bundles the three topics of the ingestion pipeline.
type Bus struct {
	Events       *Topic[*normalize.Event]
	Reviews      *Topic[*normalize.Review]
	Availability *Topic[*normalize.Available]
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		Events:       newTopic[*normalize.Event]("event", logger),
		Reviews:      newTopic[*normalize.Review]("review", logger),
		Availability: newTopic[*normalize.Available]("available", logger),
	}
}
