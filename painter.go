package layercanvas

// paintTarget is shared between a painter and the painters derived from it, so that switching to the offscreen buffer affects all of them.
type paintTarget struct {
	primary   Surface
	offscreen Surface
	active    Surface
}

// Painter draws primitives in logical coordinates. Every coordinate is mapped through the painter's transformation before it reaches the surface. Painters are cheap values; Transform returns a new one and leaves the receiver untouched.
type Painter struct {
	t *paintTarget
	m Matrix
}

// NewPainter returns a painter drawing on s with m mapping logical to pixel coordinates.
func NewPainter(s Surface, m Matrix) *Painter {
	return &Painter{
		t: &paintTarget{primary: s, active: s},
		m: m,
	}
}

// Matrix returns the transformation from logical to pixel coordinates.
func (p *Painter) Matrix() Matrix {
	return p.m
}

// Surface returns the surface currently drawn on, which is the offscreen buffer between UseOffscreen and TransferOffscreenToPrimary.
func (p *Painter) Surface() Surface {
	return p.t.active
}

// Size returns the pixel size of the surface.
func (p *Painter) Size() (int, int) {
	return p.t.active.Size()
}

// Transform returns a painter for a nested coordinate system: points are mapped by m first and then by the current transformation. If the composition is not invertible, a warning is logged and the returned painter keeps the current transformation.
func (p *Painter) Transform(m Matrix) *Painter {
	c := Compose(p.m, m)
	if !c.Invertible() {
		logger.Warn("painter transformation is not invertible, ignoring it", "matrix", m)
		return &Painter{p.t, p.m}
	}
	return &Painter{p.t, c}
}

// ToPixel maps a logical point to pixel space.
func (p *Painter) ToPixel(pt Point) Point {
	return p.m.Dot(pt)
}

// axisAligned is true if the transformation maps rectangles to rectangles.
func (p *Painter) axisAligned() bool {
	return Equal(p.m[0][1], 0.0) && Equal(p.m[1][0], 0.0)
}

// corners returns r as a closed path in pixel space.
func (p *Painter) corners(r Rect) *Path {
	path := Polyline(
		Point{r.Xmin, r.Ymin},
		Point{r.Xmax, r.Ymin},
		Point{r.Xmax, r.Ymax},
		Point{r.Xmin, r.Ymax},
	).Close()
	return path.Transform(p.m)
}

// pixelBounds returns the pixel bounding box of a logical rectangle.
func (p *Painter) pixelBounds(r Rect) Rect {
	if p.axisAligned() {
		return r.Transform(p.m).Normalize()
	}
	return p.corners(r).Bounds()
}

////////////////////////////////////////////////////////////////

// Wipe clears the whole surface.
func (p *Painter) Wipe() {
	p.t.active.Clear(FullRect(p.t.active))
}

// Clear clears the logical region r.
func (p *Painter) Clear(r Rect) {
	p.t.active.Clear(p.pixelBounds(r))
}

// Save pushes the clip state of the surface.
func (p *Painter) Save() {
	p.t.active.Save()
}

// Restore pops the clip state of the surface.
func (p *Painter) Restore() {
	p.t.active.Restore()
}

// Clip restricts drawing to the bounding box of the logical region r until the matching Restore.
func (p *Painter) Clip(r Rect) {
	p.t.active.Clip(p.pixelBounds(r))
}

// FillRect fills the logical rectangle r.
func (p *Painter) FillRect(r Rect, brush Brush) {
	if !brush.Visible() {
		return
	}
	if p.axisAligned() {
		p.t.active.FillRect(r.Transform(p.m), brush)
	} else {
		p.t.active.FillPath(p.corners(r), brush)
	}
}

// DrawRect strokes the outline of the logical rectangle r.
func (p *Painter) DrawRect(r Rect, pen Pen) {
	if !pen.Visible() {
		return
	}
	if p.axisAligned() {
		p.t.active.StrokeRect(r.Transform(p.m), pen)
	} else {
		p.t.active.StrokePath(p.corners(r), pen)
	}
}

// ellipse returns the pixel center and radii of the ellipse inscribed in the transformed bounding rectangle r. A non-uniform scale thus turns a logical circle into an ellipse.
func (p *Painter) ellipse(r Rect) (Point, float64, float64) {
	pr := p.pixelBounds(r)
	return p.m.Dot(r.Center()), pr.W() / 2.0, pr.H() / 2.0
}

// FillEllipse fills the ellipse inscribed in the logical rectangle r.
func (p *Painter) FillEllipse(r Rect, brush Brush) {
	if !brush.Visible() {
		return
	}
	c, rx, ry := p.ellipse(r)
	p.t.active.FillEllipse(c, rx, ry, brush)
}

// DrawEllipse strokes the ellipse inscribed in the logical rectangle r.
func (p *Painter) DrawEllipse(r Rect, pen Pen) {
	if !pen.Visible() {
		return
	}
	c, rx, ry := p.ellipse(r)
	p.t.active.StrokeEllipse(c, rx, ry, pen)
}

// DrawPath strokes a logical path. The path is mapped point by point, so it stays correct under rotation.
func (p *Painter) DrawPath(path *Path, pen Pen) {
	if !pen.Visible() || path.Empty() {
		return
	}
	p.t.active.StrokePath(path.Transform(p.m), pen)
}

// FillPath fills a logical path, closing every subpath implicitly.
func (p *Painter) FillPath(path *Path, brush Brush) {
	if !brush.Visible() || path.Empty() {
		return
	}
	p.t.active.FillPath(path.Transform(p.m), brush)
}

// DrawLine strokes a line between two logical points.
func (p *Painter) DrawLine(x0, y0, x1, y1 float64, pen Pen) {
	p.DrawPath(Line(x0, y0, x1, y1), pen)
}

// DrawMarker draws a circle around the logical point c. The radius is in pixels and does not scale with the transformation, so markers keep their size when zooming.
func (p *Painter) DrawMarker(c Point, radius float64, pen Pen, brush Brush) {
	pc := p.m.Dot(c)
	if brush.Visible() {
		p.t.active.FillEllipse(pc, radius, radius, brush)
	}
	if pen.Visible() {
		p.t.active.StrokeEllipse(pc, radius, radius, pen)
	}
}

////////////////////////////////////////////////////////////////

// UseOffscreen redirects drawing of this painter, and all painters sharing its surface, to an empty offscreen buffer.
func (p *Painter) UseOffscreen() {
	if p.t.offscreen == nil {
		p.t.offscreen = p.t.primary.NewOffscreen()
	} else {
		p.t.offscreen.Clear(FullRect(p.t.offscreen))
	}
	p.t.active = p.t.offscreen
}

// TransferOffscreenToPrimary composites the offscreen buffer onto the primary surface in one go and continues drawing on the primary surface.
func (p *Painter) TransferOffscreenToPrimary() {
	if p.t.offscreen == nil {
		return
	}
	p.t.primary.Composite(p.t.offscreen)
	p.t.active = p.t.primary
}
