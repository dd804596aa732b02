package layercanvas

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
)

// recorder is a Surface that records the calls it receives.
type recorder struct {
	w, h   int
	ops    []string
	parent *recorder
}

func newRecorder(w, h int) *recorder {
	return &recorder{w: w, h: h}
}

func (r *recorder) record(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recorder) String() string {
	return strings.Join(r.ops, "\n")
}

func (r *recorder) reset() {
	r.ops = r.ops[:0]
}

func (r *recorder) Size() (int, int) { return r.w, r.h }

func (r *recorder) Clear(rect Rect) { r.record("Clear %v", rect) }

func (r *recorder) FillRect(rect Rect, brush Brush) { r.record("FillRect %v", rect) }

func (r *recorder) StrokeRect(rect Rect, pen Pen) { r.record("StrokeRect %v", rect) }

func (r *recorder) FillEllipse(c Point, rx, ry float64, brush Brush) {
	r.record("FillEllipse %v %g %g", c, rx, ry)
}

func (r *recorder) StrokeEllipse(c Point, rx, ry float64, pen Pen) {
	r.record("StrokeEllipse %v %g %g", c, rx, ry)
}

func (r *recorder) FillPath(p *Path, brush Brush) { r.record("FillPath %v", p) }

func (r *recorder) StrokePath(p *Path, pen Pen) { r.record("StrokePath %v", p) }

func (r *recorder) FillText(s string, origin Point, font Font, brush Brush, orientation Orientation) {
	r.record("FillText %s %v %v", s, origin, orientation)
}

// MeasureText uses a fixed advance of 6 pixels, an ascent of 8 and a descent of 2.
func (r *recorder) MeasureText(s string, font Font) TextMetrics {
	return TextMetrics{Width: 6.0 * float64(len(s)), Ascent: 8.0, Descent: 2.0}
}

func (r *recorder) Save()          { r.record("Save") }
func (r *recorder) Restore()       { r.record("Restore") }
func (r *recorder) Clip(rect Rect) { r.record("Clip %v", rect) }

func (r *recorder) NewOffscreen() Surface {
	return &recorder{w: r.w, h: r.h, parent: r}
}

func (r *recorder) Composite(src Surface) {
	o := src.(*recorder)
	r.record("Composite[%s]", strings.Join(o.ops, "; "))
}

func (r *recorder) Resize(w, h int) {
	r.w, r.h = w, h
	r.record("Resize %dx%d", w, h)
}

////////////////////////////////////////////////////////////////

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

// fakeClock is a Scheduler with a manually advanced clock. Callbacks run on the test goroutine.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
	posted chan func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		posted: make(chan func(), 64),
	}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) func() bool {
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return func() bool {
		wasActive := !t.stopped
		t.stopped = true
		return wasActive
	}
}

// Post may be called from other goroutines.
func (c *fakeClock) Post(f func()) {
	c.posted <- f
}

// pending returns the number of timers that have not fired or been stopped.
func (c *fakeClock) pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward and fires the timers that are due, in order.
func (c *fakeClock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for {
		sort.SliceStable(c.timers, func(i, j int) bool {
			return c.timers[i].at.Before(c.timers[j].at)
		})
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.at.After(end) {
				next = t
				break
			}
		}
		if next == nil {
			break
		}
		if c.now.Before(next.at) {
			c.now = next.at
		}
		next.stopped = true
		next.f()
	}
	c.now = end
}

// Drain waits for one posted callback and runs it.
func (c *fakeClock) Drain(t *testing.T) {
	t.Helper()
	select {
	case f := <-c.posted:
		f()
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for posted callback")
	}
}

func mustPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	f()
}
