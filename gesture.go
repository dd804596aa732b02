package layercanvas

// DefaultDragThreshold is the distance in pixels the pointer must move while pressed before a drag starts.
const DefaultDragThreshold = 4.0

// dragTracker turns press, move and release events in pixel space into drag gestures.
type dragTracker struct {
	threshold float64
	pressed   bool
	dragging  bool
	anchor    Point
}

// update feeds a mouse event and returns the drag event it produces, if any.
func (d *dragTracker) update(e MouseEvent) (DragEvent, bool) {
	switch e.Type {
	case MousePress:
		if e.Buttons&ButtonPrimary == 0 {
			return DragEvent{}, false
		}
		d.pressed = true
		d.dragging = false
		d.anchor = e.Point
	case MouseMove:
		if !d.pressed {
			return DragEvent{}, false
		} else if !d.dragging && e.Point.Sub(d.anchor).Length() < d.threshold {
			return DragEvent{}, false
		}
		d.dragging = true
		return d.event(e, false), true
	case MouseRelease:
		if !d.pressed {
			return DragEvent{}, false
		}
		dragging := d.dragging
		d.pressed = false
		d.dragging = false
		if dragging {
			return d.event(e, true), true
		}
	}
	return DragEvent{}, false
}

// cancel aborts the current gesture without a release event.
func (d *dragTracker) cancel() {
	d.pressed = false
	d.dragging = false
}

func (d *dragTracker) event(e MouseEvent, released bool) DragEvent {
	return DragEvent{
		Rect:     RectFromPoints(d.anchor, e.Point),
		Anchor:   d.anchor,
		Position: e.Point,
		Released: released,
		Shift:    e.Modifiers.Shift(),
	}
}
