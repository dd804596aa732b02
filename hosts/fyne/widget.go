package fyne

import (
	"image"

	"fyne.io/fyne/v2"
	fyneCanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/tdewolff/layercanvas"
	"github.com/tdewolff/layercanvas/rasterizer"
)

// Widget shows a compositor in a Fyne window and feeds it the window's pointer, wheel and keyboard events in pixel coordinates.
type Widget struct {
	widget.BaseWidget

	// OnResize is called with the new pixel size when the widget is resized, so that layers can receive new props.
	OnResize func(width, height int)
	// OnKey is called for key events that all layers let propagate.
	OnKey func(*fyne.KeyEvent)

	surface *rasterizer.Surface
	comp    *layercanvas.Compositor
	raster  *fyneCanvas.Raster
	minSize fyne.Size
	buttons layercanvas.Buttons
	mods    fyne.KeyModifier
}

// New returns a widget with an empty compositor.
func New(opts layercanvas.Options) *Widget {
	w := &Widget{
		surface: rasterizer.New(1, 1),
		minSize: fyne.NewSize(100, 100),
	}
	w.comp = layercanvas.NewCompositor(w.surface, Scheduler{}, opts)
	w.raster = fyneCanvas.NewRaster(w.draw)
	w.raster.ScaleMode = fyneCanvas.ImageScalePixels
	w.comp.OnFrame(w.raster.Refresh)
	w.ExtendBaseWidget(w)
	return w
}

// Compositor returns the compositor shown by the widget. It must only be used on the Fyne main goroutine.
func (w *Widget) Compositor() *layercanvas.Compositor {
	return w.comp
}

// SetMinSize sets the minimum size of the widget.
func (w *Widget) SetMinSize(size fyne.Size) {
	w.minSize = size
	w.raster.SetMinSize(size)
}

// MinSize returns the minimum size of the widget.
func (w *Widget) MinSize() fyne.Size {
	return w.minSize
}

// CreateRenderer returns the renderer of the raster.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

// draw is the raster generator, called with the size in device pixels.
func (w *Widget) draw(width, height int) image.Image {
	if cw, ch := w.surface.Size(); cw != width || ch != height {
		if err := w.comp.Resize(width, height); err != nil {
			layercanvas.Logger().Error("resize widget", "error", err)
		} else if w.OnResize != nil {
			w.OnResize(width, height)
		}
	}
	return w.surface.Image()
}

// scale returns the number of device pixels per Fyne unit.
func (w *Widget) scale() float64 {
	width, _ := w.surface.Size()
	if size := w.Size(); 1 < width && 0 < size.Width {
		return float64(width) / float64(size.Width)
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		return float64(c.Scale())
	}
	return 1.0
}

func (w *Widget) toPixel(pos fyne.Position) layercanvas.Point {
	s := w.scale()
	return layercanvas.Point{float64(pos.X) * s, float64(pos.Y) * s}
}

func modifiers(m fyne.KeyModifier) layercanvas.Modifiers {
	var mods layercanvas.Modifiers
	if m&fyne.KeyModifierAlt != 0 {
		mods |= layercanvas.ModAlt
	}
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		mods |= layercanvas.ModCtrl
	}
	if m&fyne.KeyModifierShift != 0 {
		mods |= layercanvas.ModShift
	}
	return mods
}

func button(b desktop.MouseButton) layercanvas.Buttons {
	var buttons layercanvas.Buttons
	if b&desktop.MouseButtonPrimary != 0 {
		buttons |= layercanvas.ButtonPrimary
	}
	if b&desktop.MouseButtonSecondary != 0 {
		buttons |= layercanvas.ButtonSecondary
	}
	if b&desktop.MouseButtonTertiary != 0 {
		buttons |= layercanvas.ButtonTertiary
	}
	return buttons
}

func (w *Widget) mouse(typ layercanvas.MouseEventType, ev *desktop.MouseEvent) {
	w.mods = ev.Modifier
	w.comp.Mouse(layercanvas.MouseEvent{
		Type:      typ,
		Point:     w.toPixel(ev.Position),
		Buttons:   w.buttons,
		Modifiers: modifiers(ev.Modifier),
	})
}

////////////////////////////////////////////////////////////////

// MouseDown implements desktop.Mouseable.
func (w *Widget) MouseDown(ev *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		c.Focus(w)
	}
	w.buttons |= button(ev.Button)
	w.mouse(layercanvas.MousePress, ev)
}

// MouseUp implements desktop.Mouseable.
func (w *Widget) MouseUp(ev *desktop.MouseEvent) {
	w.mouse(layercanvas.MouseRelease, ev)
	w.buttons &^= button(ev.Button)
}

// MouseIn implements desktop.Hoverable.
func (w *Widget) MouseIn(*desktop.MouseEvent) {
	w.comp.Presence(layercanvas.PresenceEvent{Type: layercanvas.PointerEnter})
}

// MouseMoved implements desktop.Hoverable.
func (w *Widget) MouseMoved(ev *desktop.MouseEvent) {
	w.mouse(layercanvas.MouseMove, ev)
}

// MouseOut implements desktop.Hoverable.
func (w *Widget) MouseOut() {
	w.buttons = 0
	w.comp.Presence(layercanvas.PresenceEvent{Type: layercanvas.PointerLeave})
	w.comp.Presence(layercanvas.PresenceEvent{Type: layercanvas.PointerOut})
}

// Scrolled implements fyne.Scrollable.
func (w *Widget) Scrolled(ev *fyne.ScrollEvent) {
	w.comp.Wheel(layercanvas.WheelEvent{
		DeltaX:    float64(-ev.Scrolled.DX),
		DeltaY:    float64(-ev.Scrolled.DY),
		Modifiers: modifiers(w.mods),
	})
}

// FocusGained implements fyne.Focusable.
func (w *Widget) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (w *Widget) FocusLost() {
	w.mods = 0
}

// TypedRune implements fyne.Focusable.
func (w *Widget) TypedRune(rune) {}

// TypedKey implements fyne.Focusable. Keys are handled through KeyDown and KeyUp.
func (w *Widget) TypedKey(*fyne.KeyEvent) {}

// KeyDown implements desktop.Keyable.
func (w *Widget) KeyDown(ev *fyne.KeyEvent) {
	w.trackModifier(ev.Name, true)
	w.key(layercanvas.KeyPress, ev)
}

// KeyUp implements desktop.Keyable.
func (w *Widget) KeyUp(ev *fyne.KeyEvent) {
	w.trackModifier(ev.Name, false)
	w.key(layercanvas.KeyRelease, ev)
}

func (w *Widget) key(typ layercanvas.KeyEventType, ev *fyne.KeyEvent) {
	propagate := w.comp.Key(layercanvas.KeyEvent{
		Type:      typ,
		Key:       string(ev.Name),
		Code:      ev.Physical.ScanCode,
		Modifiers: modifiers(w.mods),
	})
	if propagate && w.OnKey != nil {
		w.OnKey(ev)
	}
}

// trackModifier keeps the held modifiers, since key events carry none.
func (w *Widget) trackModifier(name fyne.KeyName, down bool) {
	var m fyne.KeyModifier
	switch name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		m = fyne.KeyModifierShift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		m = fyne.KeyModifierControl
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		m = fyne.KeyModifierAlt
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		m = fyne.KeyModifierSuper
	default:
		return
	}
	if down {
		w.mods |= m
	} else {
		w.mods &^= m
	}
}
