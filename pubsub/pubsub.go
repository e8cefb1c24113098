// Package pubsub is an in-process topic bus. Delivery is synchronous: Publish returns once every
// handler subscribed at the time of the call has returned.
package pubsub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"go.viam.com/pourdemo/logging"
)

// Handler receives messages published on a topic.
type Handler[T any] func(ctx context.Context, msg T)

// Bus routes messages of type T by topic name.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[string]map[string]Handler[T]
	logger logging.Logger
	// closed and replaced on every Subscribe
	subscribed chan struct{}
}

// NewBus returns an empty bus.
func NewBus[T any](logger logging.Logger) *Bus[T] {
	return &Bus[T]{
		subs:       map[string]map[string]Handler[T]{},
		logger:     logger,
		subscribed: make(chan struct{}),
	}
}

// Subscription is a registered handler. Unsubscribe is safe to call more than once.
type Subscription struct {
	id    string
	topic string
	once  sync.Once
	drop  func()
}

// ID returns the unique id of the subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Unsubscribe removes the handler. A publish already in progress may still deliver to it.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.drop)
}

// Subscribe registers handler on topic.
func (b *Bus[T]) Subscribe(topic string, handler Handler[T]) *Subscription {
	id := uuid.NewString()
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[string]Handler[T]{}
	}
	b.subs[topic][id] = handler
	close(b.subscribed)
	b.subscribed = make(chan struct{})
	b.mu.Unlock()
	b.logger.Debugw("subscribed", "topic", topic, "subscription", id)

	return &Subscription{
		id:    id,
		topic: topic,
		drop: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
		},
	}
}

// Publish delivers msg to every current subscriber of topic and returns how many there were.
// Handlers run on the caller's goroutine, outside of the bus lock.
func (b *Bus[T]) Publish(ctx context.Context, topic string, msg T) int {
	b.mu.RLock()
	handlers := lo.Values(b.subs[topic])
	b.mu.RUnlock()

	b.logger.CDebugw(ctx, "publishing", "topic", topic, "subscribers", len(handlers))
	for _, h := range handlers {
		h(ctx, msg)
	}
	return len(handlers)
}

// Subscribers returns the number of handlers on topic.
func (b *Bus[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// WaitForSubscriber blocks until topic has at least one subscriber or ctx is done.
func (b *Bus[T]) WaitForSubscriber(ctx context.Context, topic string) error {
	for {
		b.mu.RLock()
		n := len(b.subs[topic])
		next := b.subscribed
		b.mu.RUnlock()
		if n > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-next:
		}
	}
}

// Once wraps handler so that it runs for the first message only, even when messages are
// published concurrently. Later messages are ignored.
func Once[T any](handler Handler[T]) Handler[T] {
	var consumed atomic.Bool
	return func(ctx context.Context, msg T) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}
		handler(ctx, msg)
	}
}
