package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/pourdemo/logging"
)

func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewBus[string](logging.NewTestLogger(t))

	var got []string
	sub := bus.Subscribe("chatter", func(ctx context.Context, msg string) { got = append(got, msg) })
	test.That(t, sub.Topic(), test.ShouldEqual, "chatter")
	test.That(t, sub.ID(), test.ShouldNotBeEmpty)

	test.That(t, bus.Publish(ctx, "chatter", "a"), test.ShouldEqual, 1)
	test.That(t, bus.Publish(ctx, "other", "b"), test.ShouldEqual, 0)
	test.That(t, got, test.ShouldResemble, []string{"a"})

	sub.Unsubscribe()
	sub.Unsubscribe()
	test.That(t, bus.Subscribers("chatter"), test.ShouldEqual, 0)
	test.That(t, bus.Publish(ctx, "chatter", "c"), test.ShouldEqual, 0)
	test.That(t, got, test.ShouldResemble, []string{"a"})
}

func TestOnceRunsOnlyForFirstMessage(t *testing.T) {
	ctx := context.Background()
	bus := NewBus[int](logging.NewTestLogger(t))

	var calls atomic.Int32
	var first atomic.Int32
	bus.Subscribe("solution", Once(func(ctx context.Context, msg int) {
		calls.Add(1)
		first.Store(int32(msg))
	}))

	bus.Publish(ctx, "solution", 1)
	bus.Publish(ctx, "solution", 2)
	test.That(t, calls.Load(), test.ShouldEqual, int32(1))
	test.That(t, first.Load(), test.ShouldEqual, int32(1))

	var concurrent atomic.Int32
	bus.Subscribe("race", Once(func(ctx context.Context, msg int) { concurrent.Add(1) }))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bus.Publish(ctx, "race", i)
		}(i)
	}
	wg.Wait()
	test.That(t, concurrent.Load(), test.ShouldEqual, int32(1))
}

func TestWaitForSubscriber(t *testing.T) {
	bus := NewBus[int](logging.NewTestLogger(t))

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, bus.WaitForSubscriber(cancelCtx, "solution"), test.ShouldEqual, context.Canceled)

	errCh := make(chan error, 1)
	go func() {
		errCh <- bus.WaitForSubscriber(context.Background(), "solution")
	}()
	bus.Subscribe("other", func(context.Context, int) {})
	bus.Subscribe("solution", func(context.Context, int) {})
	select {
	case err := <-errCh:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscriber")
	}
	test.That(t, bus.WaitForSubscriber(context.Background(), "solution"), test.ShouldBeNil)
}
