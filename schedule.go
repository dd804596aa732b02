package layercanvas

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs callbacks on the single goroutine that owns a compositor and its layers. Painting and event handling only happen on that goroutine, so layers need no locking; timers and asynchronous paints re-enter it through Post.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs f on the scheduler goroutine after d. The returned function cancels the call if it has not been posted yet.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
	// Post queues f to run on the scheduler goroutine. It may be called from any goroutine.
	Post(f func())
}

// EventLoop is a Scheduler running its callbacks on the goroutine that calls Run.
type EventLoop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewEventLoop returns an event loop. Callbacks are queued until Run is called.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		wake: make(chan struct{}, 1),
	}
}

// Now returns the current time.
func (l *EventLoop) Now() time.Time {
	return time.Now()
}

// AfterFunc posts f after d has elapsed.
func (l *EventLoop) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, func() {
		l.Post(f)
	})
	return t.Stop
}

// Post queues f to run on the loop.
func (l *EventLoop) Post(f func()) {
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do posts f and blocks until it has run. It must not be called from the loop itself.
func (l *EventLoop) Do(f func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})
	<-done
}

// Run executes queued callbacks in order until ctx is cancelled.
func (l *EventLoop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		fs := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, f := range fs {
			if err := ctx.Err(); err != nil {
				return err
			}
			f()
		}
		if 0 < len(fs) {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
