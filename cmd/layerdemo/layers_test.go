package main

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/tdewolff/layercanvas"
	"github.com/tdewolff/layercanvas/rasterizer"
	"github.com/tdewolff/test"
)

func TestTickStep(t *testing.T) {
	var tts = []struct {
		extent float64
		step   float64
	}{
		{100.0, 20.0},
		{50.0, 10.0},
		{7.0, 2.0},
		{20.0, 5.0},
		{0.3, 0.1},
		{0.0, 1.0},
		{-5.0, 1.0},
	}
	for _, tt := range tts {
		test.Float(t, tickStep(tt.extent), tt.step, tt.extent)
	}

	test.String(t, formatTick(20.0), "20")
	test.String(t, formatTick(-2.5), "-2.5")
	test.String(t, formatTick(1e-12), "0")
}

func TestHitElectrodes(t *testing.T) {
	s, err := LoadScene("example.toml")
	test.Error(t, err)

	test.T(t, hitElectrodes(s, layercanvas.Rect{0.0, 0.0, 0.0, 0.0}), []int{0})
	test.T(t, hitElectrodes(s, layercanvas.Rect{10.0, 20.0, 10.0, 20.0}), []int{})
	test.T(t, hitElectrodes(s, layercanvas.Rect{-6.0, 6.0, -6.0, 36.0}), []int{0, 2})
	test.T(t, hitElectrodes(s, s.Bounds()), []int{0, 1, 2, 3})

	test.T(t, union([]int{0, 2}, []int{1, 2}), []int{0, 1, 2})
	test.T(t, union(nil, []int{3}), []int{3})

	sel := selection{Selected: []int{0, 2}}
	test.That(t, sel.Contains(2))
	test.That(t, !sel.Contains(1))
}

func TestParseFloats(t *testing.T) {
	fs, err := parseFloats("1, 2.5,-3", 3)
	test.Error(t, err)
	test.T(t, fs, []float64{1.0, 2.5, -3.0})

	_, err = parseFloats("1,2", 3)
	test.That(t, err != nil)
	_, err = parseFloats("1,x", 2)
	test.That(t, err != nil)
}

// newTestDemo lays out the example scene on a raster surface. The event loop is not run, all calls happen on the test goroutine.
func newTestDemo(t *testing.T) (*demo, *rasterizer.Surface, *[]int) {
	t.Helper()
	s, err := LoadScene("example.toml")
	test.Error(t, err)
	surface := rasterizer.New(s.Width, s.Height)
	comp := layercanvas.NewCompositor(surface, layercanvas.NewEventLoop(), s.Options)
	selected := &[]int{}
	d := newDemo(s, comp, func(ids []int) {
		*selected = ids
	})
	d.resize(s.Width, s.Height)
	t.Cleanup(comp.Close)
	return d, surface, selected
}

func mouse(d *demo, typ layercanvas.MouseEventType, x, y float64, mods layercanvas.Modifiers) {
	buttons := layercanvas.ButtonPrimary
	if typ == layercanvas.MouseRelease {
		buttons = 0
	}
	d.comp.Mouse(layercanvas.MouseEvent{Type: typ, Point: layercanvas.Point{x, y}, Buttons: buttons, Modifiers: mods})
}

func TestElectrodeDragSelection(t *testing.T) {
	d, _, selected := newTestDemo(t)

	// select electrode B with a click
	mouse(d, layercanvas.MousePress, 374.0, 254.0, 0)
	mouse(d, layercanvas.MouseRelease, 374.0, 254.0, 0)
	test.T(t, d.electrodes.State().Selected, []int{1})

	// start a drag next to A that does not touch any pad yet
	mouse(d, layercanvas.MousePress, 80.0, 290.0, 0)
	test.T(t, d.electrodes.State().Selected, []int{1})
	mouse(d, layercanvas.MouseMove, 84.0, 294.0, 0)
	state := d.electrodes.State()
	test.That(t, state.Dragging != nil, "dragging")
	test.T(t, len(hitElectrodes(d.scene, *state.Dragging)), 0)
	test.T(t, state.Selected, []int{1}, "selection is unchanged while dragging")

	// the drag rectangle in pixels now covers the pads of A and C
	mouse(d, layercanvas.MouseMove, 130.0, 170.0, 0)
	test.T(t, d.electrodes.State().Selected, []int{1}, "selection is unchanged until release")
	mouse(d, layercanvas.MouseMove, 178.0, 47.0, 0)
	mouse(d, layercanvas.MouseRelease, 178.0, 47.0, 0)
	state = d.electrodes.State()
	test.T(t, state.Selected, []int{0, 2})
	test.That(t, state.Dragging == nil)
	test.T(t, *selected, []int{0, 2})

	// escape clears the selection and stops propagation
	test.That(t, d.comp.Key(layercanvas.KeyEvent{Type: layercanvas.KeyRelease, Key: "Escape"}))
	test.That(t, d.comp.Key(layercanvas.KeyEvent{Type: layercanvas.KeyPress, Key: "a"}))
	test.That(t, !d.comp.Key(layercanvas.KeyEvent{Type: layercanvas.KeyPress, Key: "Escape"}))
	test.T(t, len(d.electrodes.State().Selected), 0)
	test.T(t, len(*selected), 0)
}

func TestElectrodeClickSelection(t *testing.T) {
	d, _, selected := newTestDemo(t)

	// electrode B at (30,0) and A at (0,0)
	mouse(d, layercanvas.MousePress, 374.0, 254.0, 0)
	mouse(d, layercanvas.MouseRelease, 374.0, 254.0, 0)
	test.T(t, *selected, []int{1})

	mouse(d, layercanvas.MousePress, 130.0, 254.0, layercanvas.ModShift)
	mouse(d, layercanvas.MouseRelease, 130.0, 254.0, layercanvas.ModShift)
	test.T(t, *selected, []int{0, 1})

	// a click on empty space keeps the selection
	mouse(d, layercanvas.MousePress, 250.0, 170.0, 0)
	mouse(d, layercanvas.MouseRelease, 250.0, 170.0, 0)
	test.T(t, d.electrodes.State().Selected, []int{0, 1})

	// leaving the canvas cancels a drag
	mouse(d, layercanvas.MousePress, 80.0, 290.0, 0)
	mouse(d, layercanvas.MouseMove, 130.0, 170.0, 0)
	test.That(t, d.electrodes.State().Dragging != nil)
	d.comp.Presence(layercanvas.PresenceEvent{Type: layercanvas.PointerOut})
	test.That(t, d.electrodes.State().Dragging == nil)
	test.T(t, d.electrodes.State().Selected, []int{0, 1})
}

func TestDemoRender(t *testing.T) {
	d, surface, _ := newTestDemo(t)
	test.Error(t, d.comp.RepaintImmediate(context.Background()))

	img := surface.Image()
	test.T(t, img.At(1, 1), color.Color(color.RGBA{0xfa, 0xfa, 0xfa, 0xff}), "background")
	test.T(t, img.At(130, 254), color.Color(color.RGBA{0x2c, 0xa0, 0x2c, 0xff}), "electrode A")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".png", ".svg"} {
		filename := filepath.Join(dir, "out"+ext)
		cmd := &Render{Scene: "example.toml", Drag: "80,290,178,47", Output: filename}
		test.Error(t, cmd.Run())
		info, err := os.Stat(filename)
		test.Error(t, err)
		test.That(t, 0 < info.Size(), ext)
	}

	cmd := &Render{Scene: "example.toml", Click: "1", Output: filepath.Join(dir, "out.png")}
	test.That(t, cmd.Run() != nil)
	cmd = &Render{Scene: "example.toml", Output: filepath.Join(dir, "out.xyz")}
	test.That(t, cmd.Run() != nil)
}
