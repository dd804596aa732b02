package rasterizer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/tdewolff/layercanvas"
	"github.com/tdewolff/test"
)

var red = layercanvas.Brush{Color: layercanvas.Red}

func alphaAt(s *Surface, x, y int) uint8 {
	return s.Image().RGBAAt(x, y).A
}

func TestSurfaceFillRect(t *testing.T) {
	s := New(10, 10)
	w, h := s.Size()
	test.T(t, w, 10)
	test.T(t, h, 10)

	s.FillRect(layercanvas.Rect{2.0, 6.0, 6.0, 2.0}, red) // any orientation
	test.T(t, s.Image().RGBAAt(3, 3), color.RGBA{0xff, 0x00, 0x00, 0xff})
	test.T(t, alphaAt(s, 2, 2), uint8(0xff))
	test.T(t, alphaAt(s, 5, 5), uint8(0xff))
	test.T(t, alphaAt(s, 1, 3), uint8(0x00))
	test.T(t, alphaAt(s, 6, 3), uint8(0x00))

	// anti-aliased border
	s.FillRect(layercanvas.Rect{7.5, 9.0, 0.0, 1.0}, red)
	a := alphaAt(s, 7, 0)
	test.That(t, 0x60 < a && a < 0xa0, a)

	s.Clear(layercanvas.Rect{0.0, 4.0, 0.0, 10.0})
	test.T(t, alphaAt(s, 3, 3), uint8(0x00))
	test.T(t, alphaAt(s, 4, 3), uint8(0xff))
}

func TestSurfaceOutside(t *testing.T) {
	s := New(10, 10)
	s.FillRect(layercanvas.Rect{-100.0, 100.0, 4.0, 5.0}, red)
	test.T(t, alphaAt(s, 0, 4), uint8(0xff))
	test.T(t, alphaAt(s, 9, 4), uint8(0xff))

	s.FillRect(layercanvas.Rect{20.0, 30.0, 0.0, 10.0}, red)
	s.FillEllipse(layercanvas.Point{-50.0, -50.0}, 5.0, 5.0, red)
	test.T(t, alphaAt(s, 0, 0), uint8(0x00))
}

func TestSurfaceClip(t *testing.T) {
	s := New(10, 10)
	s.Save()
	s.Clip(layercanvas.Rect{0.0, 5.0, 0.0, 10.0})
	s.FillRect(layercanvas.Rect{0.0, 10.0, 0.0, 10.0}, red)
	test.T(t, alphaAt(s, 2, 5), uint8(0xff))
	test.T(t, alphaAt(s, 7, 5), uint8(0x00))
	s.Restore()
	s.Restore() // unbalanced

	s.FillRect(layercanvas.Rect{0.0, 10.0, 0.0, 10.0}, red)
	test.T(t, alphaAt(s, 7, 5), uint8(0xff))
}

func TestSurfaceEllipse(t *testing.T) {
	s := New(20, 20)
	s.FillEllipse(layercanvas.Point{10.0, 10.0}, 5.0, 5.0, red)
	test.T(t, alphaAt(s, 10, 10), uint8(0xff))
	test.T(t, alphaAt(s, 10, 3), uint8(0x00))
	test.T(t, alphaAt(s, 1, 1), uint8(0x00))

	s = New(20, 20)
	s.StrokeEllipse(layercanvas.Point{10.0, 10.0}, 6.0, 6.0, layercanvas.Pen{Color: layercanvas.Red, Width: 2.0})
	test.T(t, alphaAt(s, 10, 10), uint8(0x00), "inside the ring")
	test.T(t, alphaAt(s, 15, 10), uint8(0xff))
	test.T(t, alphaAt(s, 19, 10), uint8(0x00))
}

func TestSurfaceStrokePath(t *testing.T) {
	s := New(10, 10)
	pen := layercanvas.Pen{Color: layercanvas.Red, Width: 2.0}
	s.StrokePath(layercanvas.Line(1.0, 5.0, 9.0, 5.0), pen)
	test.T(t, alphaAt(s, 5, 4), uint8(0xff))
	test.T(t, alphaAt(s, 5, 5), uint8(0xff))
	test.T(t, alphaAt(s, 5, 2), uint8(0x00))

	// overlapping joins are not drawn twice, so a translucent stroke stays uniform
	s = New(10, 10)
	pen.Color = color.NRGBA{0xff, 0x00, 0x00, 0x80}
	s.StrokePath(layercanvas.Polyline(layercanvas.Point{1.0, 5.0}, layercanvas.Point{5.0, 5.0}, layercanvas.Point{9.0, 5.0}), pen)
	test.T(t, alphaAt(s, 4, 5), alphaAt(s, 5, 5))

	s = New(10, 10)
	pen = layercanvas.Pen{Color: layercanvas.Red, Width: 2.0, Dashes: []float64{2.0, 4.0}}
	s.StrokePath(layercanvas.Line(0.0, 5.0, 10.0, 5.0), pen)
	test.T(t, alphaAt(s, 0, 5), uint8(0xff))
	test.T(t, alphaAt(s, 4, 5), uint8(0x00))
	test.T(t, alphaAt(s, 7, 5), uint8(0xff))
}

func TestSurfaceStrokeThinJoin(t *testing.T) {
	s := New(10, 10)
	pen := layercanvas.Pen{Color: layercanvas.Red, Width: 1.0}
	s.StrokePath(layercanvas.Polyline(layercanvas.Point{1.0, 5.0}, layercanvas.Point{5.0, 5.0}, layercanvas.Point{5.0, 1.0}), pen)
	test.That(t, 0 < alphaAt(s, 5, 5), "outer corner is rounded")
	test.T(t, alphaAt(s, 7, 7), uint8(0x00))

	s = New(10, 10)
	s.StrokeRect(layercanvas.Rect{2.0, 8.0, 2.0, 8.0}, pen)
	test.That(t, 0 < alphaAt(s, 1, 1), "closing edge is joined")
	test.T(t, alphaAt(s, 5, 5), uint8(0x00))
}

func TestSurfaceFillPath(t *testing.T) {
	s := New(10, 10)
	p := &layercanvas.Path{}
	p.MoveTo(0.0, 0.0).LineTo(10.0, 0.0).LineTo(0.0, 10.0)
	s.FillPath(p, red)
	test.T(t, alphaAt(s, 1, 1), uint8(0xff))
	test.T(t, alphaAt(s, 8, 8), uint8(0x00))
}

func TestSurfaceText(t *testing.T) {
	s := New(100, 40)
	m := s.MeasureText("Hello", layercanvas.DefaultFont)
	test.That(t, 0.0 < m.Width)
	test.That(t, 0.0 < m.Descent && m.Descent < m.Ascent)

	mono := layercanvas.Font{Family: "Mono", Size: 12.0}
	test.Float(t, s.MeasureText("iii", mono).Width, s.MeasureText("WWW", mono).Width)
	test.That(t, s.MeasureText("iii", layercanvas.DefaultFont).Width < s.MeasureText("WWW", layercanvas.DefaultFont).Width)

	s.FillText("Hello", layercanvas.Point{10.0, 20.0}, layercanvas.DefaultFont, red, layercanvas.Horizontal)
	ink := inkBounds(s.Image())
	test.That(t, !ink.Empty())
	test.That(t, 9 <= ink.Min.X && ink.Max.X <= 10+int(math.Ceil(m.Width))+1, ink)
	test.That(t, 20-int(math.Ceil(m.Ascent)) <= ink.Min.Y && ink.Max.Y <= 20+int(math.Ceil(m.Descent))+1, ink)
}

func TestSurfaceTextVertical(t *testing.T) {
	s := New(40, 100)
	m := s.MeasureText("Hello", layercanvas.DefaultFont)
	s.FillText("Hello", layercanvas.Point{20.0, 80.0}, layercanvas.DefaultFont, red, layercanvas.Vertical)
	ink := inkBounds(s.Image())
	test.That(t, !ink.Empty())
	test.That(t, 20-int(math.Ceil(m.Ascent))-3 <= ink.Min.X && ink.Max.X <= 20+int(math.Ceil(m.Descent))+3, ink)
	test.That(t, 80-int(math.Ceil(m.Width))-3 <= ink.Min.Y && ink.Max.Y <= 83, ink)
	test.That(t, ink.Dy() > ink.Dx(), "text runs upwards")
}

// inkBounds returns the bounding box of non-transparent pixels.
func inkBounds(img *image.RGBA) image.Rectangle {
	ink := image.Rectangle{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return ink
}

func TestSurfaceComposite(t *testing.T) {
	s := New(10, 10)
	s.FillRect(layercanvas.Rect{0.0, 10.0, 0.0, 10.0}, layercanvas.Brush{Color: layercanvas.Blue})
	o := s.NewOffscreen()
	o.FillRect(layercanvas.Rect{0.0, 5.0, 0.0, 10.0}, red)
	test.T(t, s.Image().RGBAAt(2, 2), color.RGBA{0x00, 0x00, 0xff, 0xff})

	s.Composite(o)
	test.T(t, s.Image().RGBAAt(2, 2), color.RGBA{0xff, 0x00, 0x00, 0xff})
	test.T(t, s.Image().RGBAAt(7, 2), color.RGBA{0x00, 0x00, 0xff, 0xff})

	s.Composite(struct{ layercanvas.Surface }{o}) // foreign surfaces are ignored
}

func TestSurfaceResize(t *testing.T) {
	s := New(10, 10)
	s.FillRect(layercanvas.Rect{0.0, 10.0, 0.0, 10.0}, red)
	s.Clip(layercanvas.Rect{0.0, 1.0, 0.0, 1.0})
	s.Resize(20, 5)
	w, h := s.Size()
	test.T(t, w, 20)
	test.T(t, h, 5)
	test.T(t, alphaAt(s, 0, 0), uint8(0x00))

	s.FillRect(layercanvas.Rect{0.0, 20.0, 0.0, 5.0}, red)
	test.T(t, alphaAt(s, 19, 4), uint8(0xff), "clip is reset")
}

func TestWriter(t *testing.T) {
	_, err := WriterForFile("out.xyz")
	test.That(t, err != nil)

	s := New(4, 4)
	s.FillRect(layercanvas.Rect{0.0, 2.0, 0.0, 4.0}, red)
	for _, filename := range []string{"a.png", "a.JPG", "a.gif", "a.tiff", "a.bmp"} {
		writer, err := WriterForFile(filename)
		test.Error(t, err)
		buf := &bytes.Buffer{}
		test.Error(t, s.Write(buf, writer))
		test.That(t, 0 < buf.Len(), filename)
	}

	buf := &bytes.Buffer{}
	test.Error(t, s.Write(buf, PNGWriter()))
	img, err := png.Decode(buf)
	test.Error(t, err)
	test.T(t, img.Bounds(), image.Rect(0, 0, 4, 4))
	_, _, _, a := img.At(3, 0).RGBA()
	test.T(t, a, uint32(0))

	buf.Reset()
	test.Error(t, s.Write(buf, JPGWriter(&jpeg.Options{Quality: 100}, image.White)))
	img, err = jpeg.Decode(buf)
	test.Error(t, err)
	r, g, b, _ := img.At(3, 0).RGBA()
	test.That(t, 0xf000 < r && 0xf000 < g && 0xf000 < b, "transparent becomes white")
}

func TestSurfaceCompositor(t *testing.T) {
	s := New(10, 10)
	c := layercanvas.NewCompositor(s, layercanvas.NewEventLoop(), layercanvas.Options{})
	bg := layercanvas.NewLayer(layercanvas.LayerConfig[sizeProps, struct{}]{
		Paint: func(ctx context.Context, p *layercanvas.Painter, _ sizeProps, _ struct{}) error {
			p.FillRect(layercanvas.Rect{0.0, 10.0, 0.0, 10.0}, layercanvas.Brush{Color: layercanvas.Blue})
			return nil
		},
	}, struct{}{})
	fg := layercanvas.NewLayer(layercanvas.LayerConfig[sizeProps, struct{}]{
		Paint: func(ctx context.Context, p *layercanvas.Painter, _ sizeProps, _ struct{}) error {
			p.FillRect(layercanvas.Rect{0.0, 1.0, 0.0, 1.0}, red)
			return nil
		},
	}, struct{}{})
	fg.SetTransform(layercanvas.Identity.Scale(5.0, 5.0))
	c.Add(bg)
	c.Add(fg)
	bg.SetProps(sizeProps{10, 10})
	fg.SetProps(sizeProps{10, 10})
	test.Error(t, c.RepaintImmediate(context.Background()))

	test.T(t, s.Image().RGBAAt(2, 2), color.RGBA{0xff, 0x00, 0x00, 0xff})
	test.T(t, s.Image().RGBAAt(7, 7), color.RGBA{0x00, 0x00, 0xff, 0xff})
}

type sizeProps struct{ W, H int }

func (p sizeProps) Size() (int, int) {
	return p.W, p.H
}
