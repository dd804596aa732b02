package main

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/tdewolff/layercanvas"
)

// sceneProps are the props shared by all layers of the demo.
type sceneProps struct {
	Width, Height int
	Scene         *Scene
}

func (p sceneProps) Size() (int, int) {
	return p.Width, p.Height
}

////////////////////////////////////////////////////////////////

// newAxesLayer draws the background, the plot frame with ticks and the axis labels.
func newAxesLayer(s *Scene) *layercanvas.Layer[sceneProps, struct{}] {
	l := layercanvas.NewLayer(layercanvas.LayerConfig[sceneProps, struct{}]{
		Paint:         paintAxes,
		OnPropsChange: setSceneTransform[struct{}],
		RefreshRate:   s.RefreshRate,
	}, struct{}{})
	return l
}

// setSceneTransform updates the transformation to the new size and repaints.
func setSceneTransform[S any](l *layercanvas.Layer[sceneProps, S], props sceneProps) {
	l.SetTransform(props.Scene.Transform(props.Width, props.Height))
	l.ScheduleRepaint()
}

func paintAxes(ctx context.Context, p *layercanvas.Painter, props sceneProps, _ struct{}) error {
	s := props.Scene
	fg := mustColor(s.Foreground)
	pen := layercanvas.Pen{Color: fg, Width: 1.0}
	font := layercanvas.Font{Family: "sans", Size: s.FontSize}
	brush := layercanvas.Brush{Color: fg}

	// ticks and labels keep their pixel size, so they are drawn in pixel space
	pixel := layercanvas.NewPainter(p.Surface(), layercanvas.Identity)
	pixel.Wipe()
	pixel.FillRect(layercanvas.FullRect(p.Surface()), layercanvas.Brush{Color: mustColor(s.Background)})

	b := s.Bounds()
	p.DrawRect(b, pen)
	tick := 4.0
	step := tickStep(b.W())
	for x := math.Ceil(b.Xmin/step) * step; x <= b.Xmax; x += step {
		pt := p.ToPixel(layercanvas.Point{x, b.Ymin})
		pixel.DrawLine(pt.X, pt.Y, pt.X, pt.Y+tick, pen)
		r := layercanvas.Rect{pt.X - 20.0, pt.X + 20.0, pt.Y + tick, pt.Y + tick + s.FontSize*1.5}
		pixel.DrawText(formatTick(x), r, layercanvas.Center, layercanvas.Top, font, brush, layercanvas.Horizontal)
	}
	step = tickStep(b.H())
	for y := math.Ceil(b.Ymin/step) * step; y <= b.Ymax; y += step {
		pt := p.ToPixel(layercanvas.Point{b.Xmin, y})
		pixel.DrawLine(pt.X-tick, pt.Y, pt.X, pt.Y, pen)
		r := layercanvas.Rect{pt.X - tick - 40.0, pt.X - tick - 2.0, pt.Y - s.FontSize, pt.Y + s.FontSize}
		pixel.DrawText(formatTick(y), r, layercanvas.Right, layercanvas.Center, font, brush, layercanvas.Horizontal)
	}

	w, h := float64(props.Width), float64(props.Height)
	pixel.DrawText(s.XLabel, layercanvas.Rect{s.Margin, w - s.Margin/2.0, h - s.Margin/2.0, h}, layercanvas.Center, layercanvas.Center, font, brush, layercanvas.Horizontal)
	pixel.DrawText(s.YLabel, layercanvas.Rect{0.0, s.Margin / 3.0, s.Margin / 2.0, h - s.Margin}, layercanvas.Center, layercanvas.Center, font, brush, layercanvas.Vertical)
	return ctx.Err()
}

// tickStep returns a step of 1, 2 or 5 times a power of ten that gives about five ticks.
func tickStep(extent float64) float64 {
	if extent <= 0.0 {
		return 1.0
	}
	raw := extent / 5.0
	mag := math.Pow(10.0, math.Floor(math.Log10(raw)))
	for _, f := range []float64{1.0, 2.0, 5.0} {
		if raw <= f*mag {
			return f * mag
		}
	}
	return 10.0 * mag
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-9 {
		v = 0.0
	}
	return fmt.Sprintf("%g", v)
}

////////////////////////////////////////////////////////////////

// selection is the state of the electrode layer.
type selection struct {
	Selected []int             // sorted electrode IDs
	Dragging *layercanvas.Rect // logical drag rectangle while dragging
}

// Contains returns true if the electrode is selected.
func (s selection) Contains(id int) bool {
	_, ok := slices.BinarySearch(s.Selected, id)
	return ok
}

// padRect returns the logical region of an electrode pad.
func padRect(s *Scene, e Electrode) layercanvas.Rect {
	d := s.PadSize / 2.0
	return layercanvas.Rect{e.X - d, e.X + d, e.Y - d, e.Y + d}
}

// hitElectrodes returns the sorted IDs of the electrodes whose pads overlap r.
func hitElectrodes(s *Scene, r layercanvas.Rect) []int {
	ids := []int{}
	for _, e := range s.Electrodes {
		if padRect(s, e).Overlaps(r) {
			ids = append(ids, e.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// union returns the sorted union of two sorted ID lists.
func union(a, b []int) []int {
	ids := append(append([]int{}, a...), b...)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// newElectrodeLayer draws the electrode pads and handles selection: a click selects the electrode under the pointer, a drag selects all electrodes its rectangle touches. Holding shift adds to the selection and escape clears it.
func newElectrodeLayer(s *Scene, onSelect func([]int)) *layercanvas.Layer[sceneProps, selection] {
	return layercanvas.NewLayer(layercanvas.LayerConfig[sceneProps, selection]{
		Paint:         paintElectrodes,
		OnPropsChange: setSceneTransform[selection],
		RefreshRate:   s.RefreshRate,
		Handlers: layercanvas.Handlers[sceneProps, selection]{
			Mouse: []layercanvas.MouseHandler[sceneProps, selection]{
				func(e layercanvas.MouseEvent, l *layercanvas.Layer[sceneProps, selection]) {
					if e.Type != layercanvas.MousePress || e.Buttons&layercanvas.ButtonPrimary == 0 {
						return
					}
					ids := hitElectrodes(l.Props().Scene, layercanvas.Rect{e.Point.X, e.Point.X, e.Point.Y, e.Point.Y})
					if len(ids) == 0 && !e.Modifiers.Shift() {
						return
					}
					l.UpdateState(func(sel *selection) {
						if e.Modifiers.Shift() {
							ids = union(sel.Selected, ids)
						}
						sel.Selected = ids
					})
					if onSelect != nil {
						onSelect(l.State().Selected)
					}
				},
			},
			Drag: []layercanvas.DragHandler[sceneProps, selection]{
				func(e layercanvas.DragEvent, l *layercanvas.Layer[sceneProps, selection]) {
					if !e.Released {
						r := e.Rect
						l.UpdateState(func(sel *selection) {
							sel.Dragging = &r
						})
						return
					}
					ids := hitElectrodes(l.Props().Scene, e.Rect)
					l.UpdateState(func(sel *selection) {
						if e.Shift {
							ids = union(sel.Selected, ids)
						}
						sel.Selected = ids
						sel.Dragging = nil
					})
					if onSelect != nil {
						onSelect(l.State().Selected)
					}
				},
			},
			Key: []layercanvas.KeyHandler[sceneProps, selection]{
				func(e layercanvas.KeyEvent, l *layercanvas.Layer[sceneProps, selection]) bool {
					if e.Type != layercanvas.KeyPress || e.Key != "Escape" {
						return true
					}
					l.SetState(selection{})
					if onSelect != nil {
						onSelect(nil)
					}
					return false
				},
			},
			Presence: []layercanvas.PresenceHandler[sceneProps, selection]{
				func(e layercanvas.PresenceEvent, l *layercanvas.Layer[sceneProps, selection]) {
					if e.Type == layercanvas.PointerOut && l.State().Dragging != nil {
						l.UpdateState(func(sel *selection) {
							sel.Dragging = nil
						})
					}
				},
			},
		},
	}, selection{})
}

func paintElectrodes(ctx context.Context, p *layercanvas.Painter, props sceneProps, sel selection) error {
	s := props.Scene
	normal := layercanvas.Brush{Color: mustColor(s.Electrode)}
	selected := layercanvas.Brush{Color: mustColor(s.Selected)}
	outline := layercanvas.Pen{Color: mustColor(s.Foreground), Width: 1.0}

	p.Wipe()
	p.Save()
	p.Clip(s.Bounds())
	for _, e := range s.Electrodes {
		brush := normal
		if sel.Contains(e.ID) {
			brush = selected
		}
		r := padRect(s, e)
		p.FillRect(r, brush)
		p.DrawRect(r, outline)
		if sel.Contains(e.ID) {
			p.DrawMarker(layercanvas.Point{e.X, e.Y}, s.MarkerSize, layercanvas.Pen{Color: layercanvas.White, Width: 1.0}, layercanvas.Brush{})
		}
	}
	if sel.Dragging != nil {
		p.DrawRect(*sel.Dragging, layercanvas.Pen{Color: mustColor(s.Foreground), Width: 1.0, Dashes: []float64{4.0, 3.0}})
	}
	p.Restore()
	return ctx.Err()
}

////////////////////////////////////////////////////////////////

// newLabelLayer draws the electrode labels next to their pads. It paints asynchronously, since label layout scales with the number of electrodes.
func newLabelLayer(s *Scene) *layercanvas.Layer[sceneProps, struct{}] {
	return layercanvas.NewLayer(layercanvas.LayerConfig[sceneProps, struct{}]{
		PaintAsync:    paintLabels,
		OnPropsChange: setSceneTransform[struct{}],
		RefreshRate:   s.RefreshRate,
	}, struct{}{})
}

func paintLabels(ctx context.Context, p *layercanvas.Painter, props sceneProps, _ struct{}) <-chan error {
	done := make(chan error, 1)
	go func() {
		s := props.Scene
		font := layercanvas.Font{Family: "mono", Size: s.FontSize * 0.8}
		brush := layercanvas.Brush{Color: mustColor(s.Foreground)}
		for _, e := range s.Electrodes {
			if err := ctx.Err(); err != nil {
				done <- err
				return
			}
			// the label box is relative to the electrode center
			d := s.PadSize / 2.0
			pad := p.Transform(layercanvas.Identity.Translate(e.X, e.Y))
			pad.DrawText(e.Label, layercanvas.Rect{d, 2.0 * s.PadSize, -d, d}, layercanvas.Left, layercanvas.Center, font, brush, layercanvas.Horizontal)
		}
		done <- nil
	}()
	return done
}
