package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tdewolff/layercanvas"
	"github.com/tdewolff/layercanvas/rasterizer"
	"github.com/tdewolff/minify/v2"
	minifySVG "github.com/tdewolff/minify/v2/svg"
)

// element is a drawn SVG element with its pixel bounds.
type element struct {
	bounds layercanvas.Rect
	markup string
}

// Surface is a layercanvas.Surface that records SVG elements. Text is measured with the Go fonts, the same as the rasterizer.
type Surface struct {
	width, height int
	elements      []element
	clip          layercanvas.Rect
	clips         []layercanvas.Rect
	faces         rasterizer.Faces
}

// New returns an empty SVG surface of the given pixel size.
func New(width, height int) *Surface {
	s := &Surface{
		faces: rasterizer.NewFaces(),
	}
	s.Resize(width, height)
	return s
}

// Size returns the size in pixels.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Resize changes the size and removes all elements.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
	s.elements = s.elements[:0]
	s.clip = layercanvas.FullRect(s)
	s.clips = s.clips[:0]
}

// Len returns the number of recorded top level elements.
func (s *Surface) Len() int {
	return len(s.elements)
}

// add records an element, wrapped in a nested viewport when the clip does not cover it.
func (s *Surface) add(bounds layercanvas.Rect, markup string) {
	bounds = bounds.Normalize()
	if !bounds.Overlaps(s.clip) {
		return
	}
	if s.clip != layercanvas.FullRect(s) && !s.clip.ContainsRect(bounds) {
		c := s.clip
		markup = fmt.Sprintf(`<svg x="%v" y="%v" width="%v" height="%v" viewBox="%v %v %v %v">%s</svg>`, num(c.Xmin), num(c.Ymin), num(c.W()), num(c.H()), num(c.Xmin), num(c.Ymin), num(c.W()), num(c.H()), markup)
		bounds, _ = bounds.Intersect(c)
	}
	s.elements = append(s.elements, element{bounds, markup})
}

// Clear removes all elements that lie within r. Since recorded elements cannot be cut, elements that only partially overlap r are kept.
func (s *Surface) Clear(r layercanvas.Rect) {
	r = r.Normalize()
	if r.ContainsRect(layercanvas.FullRect(s)) {
		s.elements = s.elements[:0]
		return
	}
	elements := s.elements[:0]
	for _, e := range s.elements {
		if !r.ContainsRect(e.bounds) {
			elements = append(elements, e)
		}
	}
	s.elements = elements
}

func strokeAttrs(b *strings.Builder, pen layercanvas.Pen) {
	b.WriteString(` fill="none"`)
	writePaint(b, "stroke", pen.Color)
	if pen.Width != 1.0 {
		fmt.Fprintf(b, ` stroke-width="%v"`, dec(pen.Width))
	}
	b.WriteString(` stroke-linecap="round" stroke-linejoin="round"`)
	if 0 < len(pen.Dashes) {
		fmt.Fprintf(b, ` stroke-dasharray="%v`, dec(pen.Dashes[0]))
		for _, d := range pen.Dashes[1:] {
			fmt.Fprintf(b, " %v", dec(d))
		}
		b.WriteString(`"`)
	}
}

func grow(r layercanvas.Rect, d float64) layercanvas.Rect {
	r = r.Normalize()
	return layercanvas.Rect{r.Xmin - d, r.Xmax + d, r.Ymin - d, r.Ymax + d}
}

func (s *Surface) rect(r layercanvas.Rect, attrs func(*strings.Builder)) string {
	r = r.Normalize()
	b := &strings.Builder{}
	fmt.Fprintf(b, `<rect x="%v" y="%v" width="%v" height="%v"`, num(r.Xmin), num(r.Ymin), num(r.W()), num(r.H()))
	attrs(b)
	b.WriteString("/>")
	return b.String()
}

// FillRect records a filled rectangle.
func (s *Surface) FillRect(r layercanvas.Rect, brush layercanvas.Brush) {
	s.add(r, s.rect(r, func(b *strings.Builder) {
		writePaint(b, "fill", brush.Color)
	}))
}

// StrokeRect records a stroked rectangle.
func (s *Surface) StrokeRect(r layercanvas.Rect, pen layercanvas.Pen) {
	s.add(grow(r, pen.Width/2.0), s.rect(r, func(b *strings.Builder) {
		strokeAttrs(b, pen)
	}))
}

func (s *Surface) ellipse(c layercanvas.Point, rx, ry float64, attrs func(*strings.Builder)) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, `<ellipse cx="%v" cy="%v" rx="%v" ry="%v"`, num(c.X), num(c.Y), num(math.Abs(rx)), num(math.Abs(ry)))
	attrs(b)
	b.WriteString("/>")
	return b.String()
}

func ellipseBounds(c layercanvas.Point, rx, ry float64) layercanvas.Rect {
	rx, ry = math.Abs(rx), math.Abs(ry)
	return layercanvas.Rect{c.X - rx, c.X + rx, c.Y - ry, c.Y + ry}
}

// FillEllipse records a filled ellipse.
func (s *Surface) FillEllipse(c layercanvas.Point, rx, ry float64, brush layercanvas.Brush) {
	s.add(ellipseBounds(c, rx, ry), s.ellipse(c, rx, ry, func(b *strings.Builder) {
		writePaint(b, "fill", brush.Color)
	}))
}

// StrokeEllipse records a stroked ellipse.
func (s *Surface) StrokeEllipse(c layercanvas.Point, rx, ry float64, pen layercanvas.Pen) {
	s.add(grow(ellipseBounds(c, rx, ry), pen.Width/2.0), s.ellipse(c, rx, ry, func(b *strings.Builder) {
		strokeAttrs(b, pen)
	}))
}

// FillPath records a filled path.
func (s *Surface) FillPath(p *layercanvas.Path, brush layercanvas.Brush) {
	b := &strings.Builder{}
	fmt.Fprintf(b, `<path d="%s"`, p)
	writePaint(b, "fill", brush.Color)
	b.WriteString("/>")
	s.add(p.Bounds(), b.String())
}

// StrokePath records a stroked path.
func (s *Surface) StrokePath(p *layercanvas.Path, pen layercanvas.Pen) {
	b := &strings.Builder{}
	fmt.Fprintf(b, `<path d="%s"`, p)
	strokeAttrs(b, pen)
	b.WriteString("/>")
	s.add(grow(p.Bounds(), pen.Width/2.0), b.String())
}

// MeasureText returns the metrics of text in the Go fonts.
func (s *Surface) MeasureText(text string, f layercanvas.Font) layercanvas.TextMetrics {
	m, err := s.faces.Measure(text, f)
	if err != nil {
		layercanvas.Logger().Warn("cannot measure text", "error", err)
	}
	return m
}

// FillText records a text element. Vertical text is rotated around its origin.
func (s *Surface) FillText(text string, origin layercanvas.Point, f layercanvas.Font, brush layercanvas.Brush, orientation layercanvas.Orientation) {
	m := s.MeasureText(text, f)
	family := "Go, sans-serif"
	if strings.Contains(strings.ToLower(f.Family), "mono") {
		family = "Go Mono, monospace"
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, `<text x="%v" y="%v" font-family="%s" font-size="%v"`, num(origin.X), num(origin.Y), family, num(f.Size))
	if f.Bold {
		b.WriteString(` font-weight="bold"`)
	}
	writePaint(b, "fill", brush.Color)
	bounds := layercanvas.Rect{origin.X, origin.X + m.Width, origin.Y - m.Ascent, origin.Y + m.Descent}
	if orientation == layercanvas.Vertical {
		fmt.Fprintf(b, ` transform="rotate(-90 %v %v)"`, num(origin.X), num(origin.Y))
		bounds = layercanvas.Rect{origin.X - m.Ascent, origin.X + m.Descent, origin.Y - m.Width, origin.Y}
	}
	b.WriteString(">")
	if err := xml.EscapeText(b, []byte(text)); err != nil {
		return
	}
	b.WriteString("</text>")
	s.add(bounds, b.String())
}

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

// Clip restricts recording to r intersected with the current clip.
func (s *Surface) Clip(r layercanvas.Rect) {
	if clip, ok := s.clip.Intersect(r.Normalize()); ok {
		s.clip = clip
	} else {
		nan := math.NaN() // overlaps nothing
		s.clip = layercanvas.Rect{nan, nan, nan, nan}
	}
}

// NewOffscreen returns an empty SVG surface of the same size.
func (s *Surface) NewOffscreen() layercanvas.Surface {
	return New(s.width, s.height)
}

// Composite records the elements of src as a group.
func (s *Surface) Composite(src layercanvas.Surface) {
	o, ok := src.(*Surface)
	if !ok {
		layercanvas.Logger().Warn("cannot composite surface", "type", fmt.Sprintf("%T", src))
		return
	} else if len(o.elements) == 0 {
		return
	}
	bounds := o.elements[0].bounds
	b := &strings.Builder{}
	b.WriteString("<g>")
	for _, e := range o.elements {
		bounds = layercanvas.Rect{
			math.Min(bounds.Xmin, e.bounds.Xmin), math.Max(bounds.Xmax, e.bounds.Xmax),
			math.Min(bounds.Ymin, e.bounds.Ymin), math.Max(bounds.Ymax, e.bounds.Ymax),
		}
		b.WriteString(e.markup)
	}
	b.WriteString("</g>")
	s.add(bounds, b.String())
}

////////////////////////////////////////////////////////////////

// WriteTo writes the recorded elements as a minified SVG document.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `<svg version="1.1" width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, s.width, s.height, s.width, s.height)
	for _, e := range s.elements {
		buf.WriteString(e.markup)
	}
	buf.WriteString("</svg>")

	cw := &countWriter{w: w}
	m := minify.New()
	m.AddFunc("image/svg+xml", minifySVG.Minify)
	if err := m.Minify("image/svg+xml", cw, buf); err != nil {
		return cw.n, fmt.Errorf("minify svg: %w", err)
	}
	return cw.n, nil
}

// Writer writes the surface as an SVG file.
func Writer(w io.Writer, s *Surface) error {
	_, err := s.WriteTo(w)
	return err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (w *countWriter) Write(b []byte) (int, error) {
	n, err := w.w.Write(b)
	w.n += int64(n)
	return n, err
}
