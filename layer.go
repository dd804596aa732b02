package layercanvas

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultRefreshRate is the maximum number of scheduled repaints per second of a layer.
const DefaultRefreshRate = 100.0

// Props are the properties a consumer pushes into its layer. Every props value carries the pixel size of the layer.
type Props interface {
	Size() (width, height int)
}

// PaintFunc draws the layer synchronously.
type PaintFunc[P Props, S any] func(ctx context.Context, p *Painter, props P, state S) error

// AsyncPaintFunc starts drawing the layer and returns a channel that receives the result once drawing is done. The painter draws on a private buffer that replaces the layer's content when the result arrives, so it may be used from another goroutine. A nil channel means the paint already completed, closing the channel without a value reports success. The channel should be buffered, since nobody receives from it after the paint is cancelled.
type AsyncPaintFunc[P Props, S any] func(ctx context.Context, p *Painter, props P, state S) <-chan error

// PropsChangeFunc is called when a layer receives props that differ from the previous ones.
type PropsChangeFunc[P Props, S any] func(l *Layer[P, S], props P)

// see Handlers
type (
	MouseHandler[P Props, S any]    func(e MouseEvent, l *Layer[P, S])
	DragHandler[P Props, S any]     func(e DragEvent, l *Layer[P, S])
	KeyHandler[P Props, S any]      func(e KeyEvent, l *Layer[P, S]) (propagate bool)
	WheelHandler[P Props, S any]    func(e WheelEvent, l *Layer[P, S])
	PresenceHandler[P Props, S any] func(e PresenceEvent, l *Layer[P, S])
)

// Handlers are the event handlers of a layer, called in order. Positions are in the layer's logical space.
type Handlers[P Props, S any] struct {
	Mouse    []MouseHandler[P, S]
	Drag     []DragHandler[P, S]
	Key      []KeyHandler[P, S]
	Wheel    []WheelHandler[P, S]
	Presence []PresenceHandler[P, S]
}

// LayerConfig is what a consumer supplies to create a layer. Exactly one of Paint and PaintAsync must be set.
type LayerConfig[P Props, S any] struct {
	Paint      PaintFunc[P, S]
	PaintAsync AsyncPaintFunc[P, S]

	// OnPropsChange is called with the new props. If nil, changed props schedule a repaint.
	OnPropsChange PropsChangeFunc[P, S]
	Handlers      Handlers[P, S]

	// RefreshRate in Hz, DefaultRefreshRate if zero.
	RefreshRate float64

	// ErrorHandler receives errors of paints that were not started by RepaintImmediate. If nil, they are logged.
	ErrorHandler func(error)
}

// repaintState is owned by the engine; consumers cannot reach it.
type repaintState struct {
	interval  time.Duration
	scheduled bool
	timerGen  uint64
	stopTimer func() bool
	lastPaint time.Time
	seq       uint64 // sequence number of the last started paint
	applied   uint64 // sequence number of the last applied paint
	pending   bool   // a repaint was requested before the layer was bound
}

// Layer binds one visual feature to the paint and event pipeline. P is the type of its props and S the type of its state. The engine never looks inside either; state is changed only through SetState and UpdateState.
//
// A layer must only be used from its scheduler goroutine.
type Layer[P Props, S any] struct {
	cfg LayerConfig[P, S]

	state    S
	props    P
	hasProps bool
	width    int
	height   int

	transform     Matrix
	inverse       Matrix
	updatingProps bool
	rs            repaintState

	surface Surface
	sched   Scheduler
	painted func()
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
}

// NewLayer returns a layer with the given initial state and the identity transformation. It panics if the configuration has no paint callback.
func NewLayer[P Props, S any](cfg LayerConfig[P, S], initialState S) *Layer[P, S] {
	if (cfg.Paint == nil) == (cfg.PaintAsync == nil) {
		panic("layercanvas: exactly one of Paint and PaintAsync must be set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Layer[P, S]{
		cfg:       cfg,
		state:     initialState,
		transform: Identity,
		inverse:   Identity,
		ctx:       ctx,
		cancel:    cancel,
	}
	l.SetRefreshRate(cfg.RefreshRate)
	return l
}

// Bind attaches the layer to the surface it paints on and the scheduler it runs on. painted is called on the scheduler goroutine after every completed paint. A Compositor binds its layers itself.
func (l *Layer[P, S]) Bind(surface Surface, sched Scheduler, painted func()) {
	l.surface = surface
	l.sched = sched
	l.painted = painted
	if l.rs.pending {
		l.rs.pending = false
		l.ScheduleRepaint()
	}
}

// Surface returns the surface the layer paints on, or nil if it is not bound.
func (l *Layer[P, S]) Surface() Surface {
	return l.surface
}

// Close cancels the context of running paints, stops a scheduled repaint and drops results of paints that complete later. A closed layer ignores events and repaint requests.
func (l *Layer[P, S]) Close() {
	if l.closed {
		return
	}
	l.closed = true
	l.cancel()
	l.stopScheduled()
}

// Closed returns true after Close.
func (l *Layer[P, S]) Closed() bool {
	return l.closed
}

////////////////////////////////////////////////////////////////

// SetProps replaces the props. Props that are shallowly equal to the current ones are ignored. Otherwise the pixel size is updated and OnPropsChange is called. Calling SetProps from within OnPropsChange panics, since it would create a feedback loop.
func (l *Layer[P, S]) SetProps(props P) {
	if l.updatingProps {
		panic("layercanvas: SetProps called from within OnPropsChange")
	}
	if l.hasProps && shallowEqual(l.props, props) {
		return
	}
	l.props = props
	l.hasProps = true
	l.width, l.height = props.Size()

	if l.cfg.OnPropsChange == nil {
		l.ScheduleRepaint()
		return
	}
	l.updatingProps = true
	defer func() {
		l.updatingProps = false
	}()
	l.cfg.OnPropsChange(l, props)
}

// Props returns the current props. It panics if no props were set yet.
func (l *Layer[P, S]) Props() P {
	if !l.hasProps {
		panic("layercanvas: props requested before SetProps")
	}
	return l.props
}

// HasProps returns true once props have been set.
func (l *Layer[P, S]) HasProps() bool {
	return l.hasProps
}

// Width returns the pixel width from the props. It panics if no props were set yet.
func (l *Layer[P, S]) Width() int {
	if !l.hasProps {
		panic("layercanvas: width requested before SetProps")
	}
	return l.width
}

// Height returns the pixel height from the props. It panics if no props were set yet.
func (l *Layer[P, S]) Height() int {
	if !l.hasProps {
		panic("layercanvas: height requested before SetProps")
	}
	return l.height
}

// State returns the current state.
func (l *Layer[P, S]) State() S {
	return l.state
}

// SetState replaces the state and schedules a repaint.
func (l *Layer[P, S]) SetState(state S) {
	l.state = state
	l.ScheduleRepaint()
}

// UpdateState modifies the state in place and schedules a repaint.
func (l *Layer[P, S]) UpdateState(f func(*S)) {
	f(&l.state)
	l.ScheduleRepaint()
}

// Transform returns the transformation from logical to pixel space.
func (l *Layer[P, S]) Transform() Matrix {
	return l.transform
}

// SetTransform sets the transformation from logical to pixel space. If it cannot be inverted, a warning is logged and events are passed on in pixel coordinates.
func (l *Layer[P, S]) SetTransform(m Matrix) {
	l.transform = m
	l.inverse = m.InvOrIdentity()
}

// ToLogical maps a pixel point to the layer's logical space.
func (l *Layer[P, S]) ToLogical(p Point) Point {
	return l.inverse.Dot(p)
}

// ToPixel maps a logical point to pixel space.
func (l *Layer[P, S]) ToPixel(p Point) Point {
	return l.transform.Dot(p)
}

// RefreshInterval returns the minimum time between scheduled repaints.
func (l *Layer[P, S]) RefreshInterval() time.Duration {
	return l.rs.interval
}

// SetRefreshRate sets the maximum number of scheduled repaints per second. Zero selects DefaultRefreshRate, a negative rate removes the limit.
func (l *Layer[P, S]) SetRefreshRate(hz float64) {
	if hz == 0.0 {
		hz = DefaultRefreshRate
	}
	if hz < 0.0 {
		l.rs.interval = 0
		return
	}
	l.rs.interval = time.Duration(float64(time.Second) / hz)
}

// LastPainted returns the time the last paint started or completed.
func (l *Layer[P, S]) LastPainted() time.Time {
	return l.rs.lastPaint
}

// RepaintScheduled returns true while a deferred repaint is pending.
func (l *Layer[P, S]) RepaintScheduled() bool {
	return l.rs.scheduled
}

////////////////////////////////////////////////////////////////

// ScheduleRepaint requests a repaint and returns immediately. Requests are coalesced: while a repaint is pending this does nothing. If the last paint is more than two refresh intervals ago the layer paints right away, otherwise the paint is deferred until one refresh interval has passed since the last paint.
func (l *Layer[P, S]) ScheduleRepaint() {
	if l.closed {
		return
	} else if l.sched == nil {
		l.rs.pending = true
		return
	} else if l.rs.scheduled {
		return
	}

	elapsed := l.sched.Now().Sub(l.rs.lastPaint)
	if l.rs.lastPaint.IsZero() || 2*l.rs.interval < elapsed {
		l.report(l.repaint())
		return
	}

	delay := l.rs.interval - elapsed
	if delay < 0 {
		delay = 0
	}
	l.rs.scheduled = true
	l.rs.timerGen++
	gen := l.rs.timerGen
	l.rs.stopTimer = l.sched.AfterFunc(delay, func() {
		if l.closed || gen != l.rs.timerGen {
			return
		}
		l.rs.scheduled = false
		l.rs.stopTimer = nil
		l.report(l.repaint())
	})
}

// RepaintImmediate paints right away, bypassing the schedule, and cancels a pending scheduled repaint. An asynchronous paint is awaited, blocking the scheduler goroutine, so the frame is up to date when it returns. Paint errors are returned.
func (l *Layer[P, S]) RepaintImmediate(ctx context.Context) error {
	l.stopScheduled()
	ctx, cancel := l.paintContext(ctx)
	defer cancel()
	job, err := l.beginPaint(ctx)
	if job == nil || err != nil {
		return err
	}
	return l.finishPaint(job, job.wait(ctx))
}

// paintContext returns a context that is cancelled with ctx and when the layer is closed.
func (l *Layer[P, S]) paintContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// stopScheduled cancels a deferred repaint.
func (l *Layer[P, S]) stopScheduled() {
	l.rs.timerGen++
	if l.rs.stopTimer != nil {
		l.rs.stopTimer()
		l.rs.stopTimer = nil
	}
	l.rs.scheduled = false
}

// repaint paints from the schedule; asynchronous results are posted back to the scheduler.
func (l *Layer[P, S]) repaint() error {
	job, err := l.beginPaint(l.ctx)
	if job == nil || err != nil {
		return err
	}
	go func() {
		err := job.wait(l.ctx)
		l.sched.Post(func() {
			l.report(l.finishPaint(job, err))
		})
	}()
	return nil
}

func (l *Layer[P, S]) report(err error) {
	if err == nil || errors.Is(err, context.Canceled) && l.closed {
		return
	} else if l.cfg.ErrorHandler != nil {
		l.cfg.ErrorHandler(err)
		return
	}
	logError("layer paint failed", err)
}

// paintJob is an asynchronous paint in flight.
type paintJob struct {
	seq     uint64
	scratch Surface
	done    <-chan error
}

// wait blocks until the paint completes or ctx is cancelled.
func (j *paintJob) wait(ctx context.Context) error {
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginPaint runs a synchronous paint to completion, or starts an asynchronous one and returns its job. It does nothing when the layer has no props or surface yet.
func (l *Layer[P, S]) beginPaint(ctx context.Context) (*paintJob, error) {
	if l.closed || !l.hasProps || l.surface == nil {
		return nil, nil
	}
	l.rs.lastPaint = l.sched.Now()
	l.rs.seq++
	seq := l.rs.seq

	if l.cfg.Paint != nil {
		err := l.cfg.Paint(ctx, NewPainter(l.surface, l.transform), l.props, l.state)
		l.rs.lastPaint = l.sched.Now()
		l.rs.applied = seq
		l.notifyPainted()
		if err != nil {
			return nil, fmt.Errorf("paint: %w", err)
		}
		return nil, nil
	}

	scratch := l.surface.NewOffscreen()
	done := l.cfg.PaintAsync(ctx, NewPainter(scratch, l.transform), l.props, l.state)
	job := &paintJob{seq, scratch, done}
	if done == nil {
		return nil, l.finishPaint(job, nil)
	}
	return job, nil
}

// finishPaint applies the result of an asynchronous paint on the scheduler goroutine. The bookkeeping is updated even if the paint failed. Results of paints that were overtaken by a later paint, or that arrive after Close, are dropped.
func (l *Layer[P, S]) finishPaint(job *paintJob, err error) error {
	if l.closed {
		return nil
	}
	l.rs.lastPaint = l.sched.Now()
	if err != nil {
		return fmt.Errorf("paint: %w", err)
	} else if job.seq <= l.rs.applied {
		return nil
	}
	l.rs.applied = job.seq
	l.surface.Clear(FullRect(l.surface))
	l.surface.Composite(job.scratch)
	l.notifyPainted()
	return nil
}

func (l *Layer[P, S]) notifyPainted() {
	if l.painted != nil {
		l.painted()
	}
}

////////////////////////////////////////////////////////////////

// HandleMouse converts a pixel space event to logical space and passes it to every mouse handler.
func (l *Layer[P, S]) HandleMouse(e MouseEvent) {
	if l.closed {
		return
	}
	e.Point = l.inverse.Dot(e.Point)
	for _, h := range l.cfg.Handlers.Mouse {
		h(e, l)
	}
}

// HandleDrag converts a pixel space drag to logical space and passes it to every drag handler.
func (l *Layer[P, S]) HandleDrag(e DragEvent) {
	if l.closed {
		return
	}
	e.Rect = e.Rect.Transform(l.inverse)
	e.Anchor = l.inverse.Dot(e.Anchor)
	e.Position = l.inverse.Dot(e.Position)
	for _, h := range l.cfg.Handlers.Drag {
		h(e, l)
	}
}

// HandleKey passes the event to every key handler and returns whether it should propagate to the host. All handlers run; the event propagates only if every handler agrees. Without handlers the event propagates.
func (l *Layer[P, S]) HandleKey(e KeyEvent) bool {
	if l.closed {
		return true
	}
	propagate := true
	for _, h := range l.cfg.Handlers.Key {
		if !h(e, l) {
			propagate = false
		}
	}
	return propagate
}

// HandleWheel passes the event to every wheel handler.
func (l *Layer[P, S]) HandleWheel(e WheelEvent) {
	if l.closed {
		return
	}
	for _, h := range l.cfg.Handlers.Wheel {
		h(e, l)
	}
}

// HandlePresence passes the event to every presence handler.
func (l *Layer[P, S]) HandlePresence(e PresenceEvent) {
	if l.closed {
		return
	}
	for _, h := range l.cfg.Handlers.Presence {
		h(e, l)
	}
}
