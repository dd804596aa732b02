package layercanvas

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// AnyLayer is a Layer of any props and state type, as held by a Compositor.
type AnyLayer interface {
	Bind(surface Surface, sched Scheduler, painted func())
	ScheduleRepaint()
	RepaintImmediate(ctx context.Context) error
	HandleMouse(MouseEvent)
	HandleDrag(DragEvent)
	HandleKey(KeyEvent) bool
	HandleWheel(WheelEvent)
	HandlePresence(PresenceEvent)
	Close()

	beginPaint(context.Context) (*paintJob, error)
	finishPaint(*paintJob, error) error
	stopScheduled()
	paintContext(context.Context) (context.Context, context.CancelFunc)
}

// Handle refers to a layer added to a Compositor. Handles of removed layers are never reused.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero returns true for the zero handle, which never refers to a layer.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d:%d)", h.index, h.gen)
}

type slot struct {
	layer  AnyLayer
	buffer Surface
	gen    uint32
}

// Options are the settings of a Compositor.
type Options struct {
	// DragThreshold in pixels, DefaultDragThreshold if zero.
	DragThreshold float64 `toml:"drag-threshold"`
}

// Compositor stacks layers on one surface. Each layer paints on its own buffer; after any layer paints, the buffers are drawn on the surface in order so later layers appear on top. Input events in pixel space are passed to every visible layer. No hit testing is done: a layer decides itself whether an event concerns it.
//
// A compositor and its layers must only be used from the scheduler goroutine.
type Compositor struct {
	surface Surface
	sched   Scheduler

	slots []slot
	free  []uint32
	order []Handle

	drag    dragTracker
	batch   bool
	onFrame func()
	closed  bool
}

// NewCompositor returns a compositor drawing on surface and running on sched.
func NewCompositor(surface Surface, sched Scheduler, opts Options) *Compositor {
	if opts.DragThreshold == 0.0 {
		opts.DragThreshold = DefaultDragThreshold
	}
	return &Compositor{
		surface: surface,
		sched:   sched,
		drag:    dragTracker{threshold: opts.DragThreshold},
	}
}

// Surface returns the surface the layers are composed on.
func (c *Compositor) Surface() Surface {
	return c.surface
}

// OnFrame sets a function that is called after every composition, eg. to let the host refresh its widget.
func (c *Compositor) OnFrame(f func()) {
	c.onFrame = f
}

// Add binds l to the compositor and puts it on top of the visible layers. Its pending repaint, if any, is scheduled.
func (c *Compositor) Add(l AnyLayer) Handle {
	var h Handle
	if n := len(c.free); 0 < n {
		h.index = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		h.index = uint32(len(c.slots))
		c.slots = append(c.slots, slot{})
	}
	s := &c.slots[h.index]
	s.gen++
	h.gen = s.gen
	s.layer = l
	s.buffer = c.surface.NewOffscreen()
	c.order = append(c.order, h)
	l.Bind(s.buffer, c.sched, c.painted)
	return h
}

// Remove closes the layer and removes it from the compositor. It returns false if the handle is stale.
func (c *Compositor) Remove(h Handle) bool {
	s := c.slot(h)
	if s == nil {
		return false
	}
	s.layer.Close()
	s.layer = nil
	s.buffer = nil
	s.gen++ // invalidate outstanding handles
	c.free = append(c.free, h.index)

	order := c.order[:0]
	for _, o := range c.order {
		if o != h {
			order = append(order, o)
		}
	}
	c.order = order
	c.compose()
	return true
}

// Layer returns the layer of a handle, or nil if the handle is stale.
func (c *Compositor) Layer(h Handle) AnyLayer {
	if s := c.slot(h); s != nil {
		return s.layer
	}
	return nil
}

// Len returns the number of layers in the compositor, visible or not.
func (c *Compositor) Len() int {
	return len(c.slots) - len(c.free)
}

// Order returns the visible layers from bottom to top.
func (c *Compositor) Order() []Handle {
	return append([]Handle{}, c.order...)
}

// SetOrder sets the visible layers from bottom to top. Layers that are not listed stay in the compositor but are neither drawn nor receive events. It returns false when the order did not change. It panics on stale or duplicate handles.
func (c *Compositor) SetOrder(order []Handle) bool {
	if len(order) == len(c.order) {
		same := true
		for i := range order {
			if order[i] != c.order[i] {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}

	seen := make(map[Handle]bool, len(order))
	for _, h := range order {
		if c.slot(h) == nil {
			panic(fmt.Sprintf("layercanvas: stale %v", h))
		} else if seen[h] {
			panic(fmt.Sprintf("layercanvas: duplicate %v", h))
		}
		seen[h] = true
	}
	c.order = append(c.order[:0:0], order...)
	c.compose()
	return true
}

func (c *Compositor) slot(h Handle) *slot {
	if h.IsZero() || len(c.slots) <= int(h.index) {
		return nil
	}
	s := &c.slots[h.index]
	if s.gen != h.gen || s.layer == nil {
		return nil
	}
	return s
}

// visible returns the visible layers from bottom to top.
func (c *Compositor) visible() []AnyLayer {
	layers := make([]AnyLayer, 0, len(c.order))
	for _, h := range c.order {
		layers = append(layers, c.slots[h.index].layer)
	}
	return layers
}

////////////////////////////////////////////////////////////////

// Resize changes the pixel size of the surface and all layer buffers and schedules a repaint of every layer. The surface must implement Resizer. Layers keep their props; consumers push props with the new size as usual.
func (c *Compositor) Resize(width, height int) error {
	r, ok := c.surface.(Resizer)
	if !ok {
		return fmt.Errorf("surface %T cannot be resized", c.surface)
	}
	if w, h := c.surface.Size(); w == width && h == height {
		return nil
	}
	r.Resize(width, height)
	for i := range c.slots {
		s := &c.slots[i]
		if s.layer == nil {
			continue
		}
		s.buffer = c.surface.NewOffscreen()
		s.layer.Bind(s.buffer, c.sched, c.painted)
	}
	c.compose()
	c.ScheduleRepaint()
	return nil
}

// ScheduleRepaint schedules a repaint of every visible layer.
func (c *Compositor) ScheduleRepaint() {
	for _, l := range c.visible() {
		l.ScheduleRepaint()
	}
}

// RepaintImmediate paints all visible layers right away, waits for asynchronous paints to complete and composes the result once. It is used to obtain an up to date frame, eg. before exporting the surface.
func (c *Compositor) RepaintImmediate(ctx context.Context) error {
	c.batch = true
	defer func() {
		c.batch = false
		c.compose()
	}()

	layers := c.visible()
	jobs := make([]*paintJob, len(layers))
	errs := make([]error, len(layers))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range layers {
		l.stopScheduled()
		pctx, cancel := l.paintContext(gctx)
		defer cancel()
		jobs[i], errs[i] = l.beginPaint(pctx)
	}

	// the first failing paint cancels the others
	waitErrs := make([]error, len(layers))
	for i, job := range jobs {
		if job == nil {
			continue
		}
		g.Go(func() error {
			waitErrs[i] = job.wait(gctx)
			return waitErrs[i]
		})
	}
	failed := g.Wait() != nil

	for i, job := range jobs {
		if job == nil {
			continue
		}
		err := layers[i].finishPaint(job, waitErrs[i])
		if failed && ctx.Err() == nil && errors.Is(err, context.Canceled) {
			continue
		}
		errs[i] = err
	}
	return errors.Join(errs...)
}

// painted is called by a layer after it painted its buffer.
func (c *Compositor) painted() {
	if !c.batch {
		c.compose()
	}
}

// compose draws the layer buffers on the surface from bottom to top.
func (c *Compositor) compose() {
	if c.closed {
		return
	}
	c.surface.Clear(FullRect(c.surface))
	for _, h := range c.order {
		c.surface.Composite(c.slots[h.index].buffer)
	}
	if c.onFrame != nil {
		c.onFrame()
	}
}

// Close closes all layers.
func (c *Compositor) Close() {
	if c.closed {
		return
	}
	for i := range c.slots {
		if c.slots[i].layer != nil {
			c.slots[i].layer.Close()
		}
	}
	c.closed = true
}

////////////////////////////////////////////////////////////////

// Mouse passes a pixel space mouse event to every visible layer. Press, move and release events with the primary button are also turned into drag gestures.
func (c *Compositor) Mouse(e MouseEvent) {
	layers := c.visible()
	for _, l := range layers {
		l.HandleMouse(e)
	}
	if drag, ok := c.drag.update(e); ok {
		for _, l := range layers {
			l.HandleDrag(drag)
		}
	}
}

// Key passes a key event to every visible layer and returns whether it should propagate to the host. It propagates only if every layer lets it.
func (c *Compositor) Key(e KeyEvent) bool {
	propagate := true
	for _, l := range c.visible() {
		if !l.HandleKey(e) {
			propagate = false
		}
	}
	return propagate
}

// Wheel passes a wheel event to every visible layer.
func (c *Compositor) Wheel(e WheelEvent) {
	for _, l := range c.visible() {
		l.HandleWheel(e)
	}
}

// Presence passes a presence event to every visible layer. Leaving the surface aborts a drag gesture.
func (c *Compositor) Presence(e PresenceEvent) {
	if e.Type == PointerOut {
		c.drag.cancel()
	}
	for _, l := range c.visible() {
		l.HandlePresence(e)
	}
}
