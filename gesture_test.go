package layercanvas

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestDragTracker(t *testing.T) {
	d := dragTracker{threshold: DefaultDragThreshold}
	press := MouseEvent{Type: MousePress, Point: Point{10.0, 10.0}, Buttons: ButtonPrimary}

	_, ok := d.update(press)
	test.That(t, !ok)
	_, ok = d.update(MouseEvent{Type: MouseMove, Point: Point{12.0, 11.0}, Buttons: ButtonPrimary})
	test.That(t, !ok, "below threshold")

	e, ok := d.update(MouseEvent{Type: MouseMove, Point: Point{20.0, 5.0}, Buttons: ButtonPrimary, Modifiers: ModShift})
	test.That(t, ok)
	test.T(t, e, DragEvent{Rect{10.0, 20.0, 10.0, 5.0}, Point{10.0, 10.0}, Point{20.0, 5.0}, false, true})

	// once dragging, small moves are reported too
	e, ok = d.update(MouseEvent{Type: MouseMove, Point: Point{21.0, 5.0}, Buttons: ButtonPrimary})
	test.That(t, ok)
	test.That(t, !e.Released)

	e, ok = d.update(MouseEvent{Type: MouseRelease, Point: Point{22.0, 6.0}})
	test.That(t, ok)
	test.T(t, e, DragEvent{Rect{10.0, 22.0, 10.0, 6.0}, Point{10.0, 10.0}, Point{22.0, 6.0}, true, false})

	_, ok = d.update(MouseEvent{Type: MouseMove, Point: Point{50.0, 50.0}})
	test.That(t, !ok, "not pressed")
}

func TestDragTrackerClick(t *testing.T) {
	d := dragTracker{threshold: DefaultDragThreshold}
	d.update(MouseEvent{Type: MousePress, Point: Point{10.0, 10.0}, Buttons: ButtonPrimary})
	d.update(MouseEvent{Type: MouseMove, Point: Point{11.0, 10.0}, Buttons: ButtonPrimary})
	_, ok := d.update(MouseEvent{Type: MouseRelease, Point: Point{11.0, 10.0}})
	test.That(t, !ok, "a click is not a drag")
}

func TestDragTrackerSecondaryButton(t *testing.T) {
	d := dragTracker{threshold: DefaultDragThreshold}
	d.update(MouseEvent{Type: MousePress, Point: Point{10.0, 10.0}, Buttons: ButtonSecondary})
	_, ok := d.update(MouseEvent{Type: MouseMove, Point: Point{50.0, 10.0}, Buttons: ButtonSecondary})
	test.That(t, !ok)
}

func TestDragTrackerCancel(t *testing.T) {
	d := dragTracker{threshold: DefaultDragThreshold}
	d.update(MouseEvent{Type: MousePress, Point: Point{10.0, 10.0}, Buttons: ButtonPrimary})
	d.update(MouseEvent{Type: MouseMove, Point: Point{50.0, 10.0}, Buttons: ButtonPrimary})
	d.cancel()
	_, ok := d.update(MouseEvent{Type: MouseRelease, Point: Point{50.0, 10.0}})
	test.That(t, !ok)
}
