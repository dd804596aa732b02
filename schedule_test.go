package layercanvas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tdewolff/test"
)

func TestEventLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := NewEventLoop()
	var order []int
	loop.Post(func() { order = append(order, 1) })
	loop.Post(func() { order = append(order, 2) })

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	loop.Do(func() { order = append(order, 3) })
	test.T(t, order, []int{1, 2, 3}, "callbacks run in posting order")

	fired := make(chan struct{})
	loop.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		test.Fail(t, "timer did not fire")
	}

	stop := loop.AfterFunc(time.Hour, func() { test.Fail(t, "stopped timer fired") })
	test.That(t, stop())

	cancel()
	select {
	case err := <-done:
		test.That(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		test.Fail(t, "loop did not stop")
	}
}

func TestEventLoopCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := NewEventLoop()
	ran := false
	loop.Post(func() { ran = true })
	test.That(t, errors.Is(loop.Run(ctx), context.Canceled))
	test.That(t, !ran, "queued callbacks are not run after cancellation")
}
