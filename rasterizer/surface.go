package rasterizer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/tdewolff/layercanvas"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// Surface is a layercanvas.Surface that rasterizes to an RGBA image with anti-aliasing.
type Surface struct {
	img   *image.RGBA
	clip  image.Rectangle
	clips []image.Rectangle
	faces Faces
}

// New returns a transparent surface of the given pixel size.
func New(width, height int) *Surface {
	return NewFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewFromImage returns a surface drawing on img. The image bounds must start at the origin.
func NewFromImage(img *image.RGBA) *Surface {
	return &Surface{
		img:   img,
		clip:  img.Bounds(),
		faces: NewFaces(),
	}
}

// Image returns the image drawn on. It is replaced by Resize.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size returns the size in pixels.
func (s *Surface) Size() (int, int) {
	size := s.img.Bounds().Size()
	return size.X, size.Y
}

// Resize replaces the image by a transparent one of the given size and resets the clip.
func (s *Surface) Resize(width, height int) {
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.clip = s.img.Bounds()
	s.clips = s.clips[:0]
}

// pixelRect returns the pixels covered by r, intersected with the clip.
func (s *Surface) pixelRect(r layercanvas.Rect) image.Rectangle {
	r = r.Normalize()
	rect := image.Rect(int(math.Floor(r.Xmin)), int(math.Floor(r.Ymin)), int(math.Ceil(r.Xmax)), int(math.Ceil(r.Ymax)))
	return rect.Intersect(s.clip)
}

// Clear makes the pixels covered by r transparent.
func (s *Surface) Clear(r layercanvas.Rect) {
	draw.Draw(s.img, s.pixelRect(r), image.Transparent, image.Point{}, draw.Src)
}

// fill rasterizes the polygons within the clip rectangle and draws col through them.
func (s *Surface) fill(polys []polygon, col color.Color) {
	bounds := layercanvas.Rect{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, poly := range polys {
		for _, p := range poly {
			bounds.Xmin = math.Min(bounds.Xmin, p.X)
			bounds.Xmax = math.Max(bounds.Xmax, p.X)
			bounds.Ymin = math.Min(bounds.Ymin, p.Y)
			bounds.Ymax = math.Max(bounds.Ymax, p.Y)
		}
	}
	if math.IsInf(bounds.Xmin, 0) {
		return
	}
	rect := s.pixelRect(bounds)
	if rect.Empty() {
		return
	}

	x0, y0 := float32(rect.Min.X), float32(rect.Min.Y)
	ras := vector.NewRasterizer(rect.Dx(), rect.Dy())
	for _, poly := range polys {
		poly = poly.clipX(float64(rect.Min.X), float64(rect.Max.X))
		if len(poly) < 3 {
			continue
		}
		ras.MoveTo(float32(poly[0].X)-x0, float32(poly[0].Y)-y0)
		for _, p := range poly[1:] {
			ras.LineTo(float32(p.X)-x0, float32(p.Y)-y0)
		}
		ras.ClosePath()
	}
	ras.Draw(s.img, rect, image.NewUniform(col), image.Point{})
}

func rectPolygon(r layercanvas.Rect) polygon {
	return polygon{{r.Xmin, r.Ymin}, {r.Xmax, r.Ymin}, {r.Xmax, r.Ymax}, {r.Xmin, r.Ymax}}
}

// FillRect fills r.
func (s *Surface) FillRect(r layercanvas.Rect, brush layercanvas.Brush) {
	s.fill([]polygon{rectPolygon(r)}, brush.Color)
}

// StrokeRect strokes the outline of r, centered on its edges.
func (s *Surface) StrokeRect(r layercanvas.Rect, pen layercanvas.Pen) {
	p := layercanvas.Polyline(
		layercanvas.Point{r.Xmin, r.Ymin},
		layercanvas.Point{r.Xmax, r.Ymin},
		layercanvas.Point{r.Xmax, r.Ymax},
		layercanvas.Point{r.Xmin, r.Ymax},
	).Close()
	s.StrokePath(p, pen)
}

// FillEllipse fills the axis aligned ellipse with center c and radii rx and ry.
func (s *Surface) FillEllipse(c layercanvas.Point, rx, ry float64, brush layercanvas.Brush) {
	s.fill(polygons(ellipsePath(c, math.Abs(rx), math.Abs(ry))), brush.Color)
}

// StrokeEllipse strokes the outline of the ellipse with center c and radii rx and ry.
func (s *Surface) StrokeEllipse(c layercanvas.Point, rx, ry float64, pen layercanvas.Pen) {
	s.fill(stroke(ellipsePath(c, math.Abs(rx), math.Abs(ry)), pen), pen.Color)
}

// FillPath fills all subpaths of p, closing them implicitly.
func (s *Surface) FillPath(p *layercanvas.Path, brush layercanvas.Brush) {
	polys := []polygon{}
	for _, sp := range p.Subpaths() {
		polys = append(polys, polygon(sp.Points))
	}
	s.fill(polys, brush.Color)
}

// StrokePath strokes p with round joins and caps.
func (s *Surface) StrokePath(p *layercanvas.Path, pen layercanvas.Pen) {
	polys := []polygon{}
	for _, sp := range p.Subpaths() {
		polys = append(polys, stroke(toPath(sp.Points, sp.Closed), pen)...)
	}
	s.fill(polys, pen.Color)
}

////////////////////////////////////////////////////////////////

// MeasureText returns the metrics of s.
func (s *Surface) MeasureText(text string, f layercanvas.Font) layercanvas.TextMetrics {
	face, err := s.faces.Face(f)
	if err != nil {
		layercanvas.Logger().Warn("cannot measure text", "error", err)
		return layercanvas.TextMetrics{}
	}
	return measure(face, text)
}

// FillText draws text with its baseline starting at origin. Vertical text is drawn on a scratch image first and rotated into place.
func (s *Surface) FillText(text string, origin layercanvas.Point, f layercanvas.Font, brush layercanvas.Brush, orientation layercanvas.Orientation) {
	face, err := s.faces.Face(f)
	if err != nil {
		layercanvas.Logger().Warn("cannot draw text", "error", err)
		return
	}
	dst := s.img.SubImage(s.clip).(*image.RGBA)
	if orientation == layercanvas.Horizontal {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(brush.Color),
			Face: face,
			Dot:  fixedPoint(origin),
		}
		d.DrawString(text)
		return
	}

	margin := 2
	m := measure(face, text)
	w := int(math.Ceil(m.Width)) + 2*margin
	h := int(math.Ceil(m.Ascent+m.Descent)) + 2*margin
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	baseline := float64(margin) + m.Ascent
	d := font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(brush.Color),
		Face: face,
		Dot:  fixedPoint(layercanvas.Point{float64(margin), baseline}),
	}
	d.DrawString(text)

	// rotate counter clockwise: the text direction points up and the glyph bottoms point right
	s2d := f64.Aff3{
		0.0, 1.0, origin.X - baseline,
		-1.0, 0.0, origin.Y + float64(margin),
	}
	draw.CatmullRom.Transform(dst, s2d, scratch, scratch.Bounds(), draw.Over, nil)
}

////////////////////////////////////////////////////////////////

// Save pushes the clip rectangle.
func (s *Surface) Save() {
	s.clips = append(s.clips, s.clip)
}

// Restore pops the clip rectangle. Unbalanced calls are ignored.
func (s *Surface) Restore() {
	if n := len(s.clips); 0 < n {
		s.clip = s.clips[n-1]
		s.clips = s.clips[:n-1]
	}
}

// Clip restricts drawing to the pixels covered by r.
func (s *Surface) Clip(r layercanvas.Rect) {
	s.clip = s.pixelRect(r)
}

// NewOffscreen returns a transparent surface of the same size.
func (s *Surface) NewOffscreen() layercanvas.Surface {
	w, h := s.Size()
	return New(w, h)
}

// Composite draws src over the surface within the clip. Sources other than rasterizer surfaces are ignored with a warning.
func (s *Surface) Composite(src layercanvas.Surface) {
	o, ok := src.(*Surface)
	if !ok {
		layercanvas.Logger().Warn("cannot composite surface", "type", fmt.Sprintf("%T", src))
		return
	}
	draw.Draw(s.img, s.clip, o.img, s.clip.Min, draw.Over)
}
