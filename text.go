package layercanvas

// DrawText draws a single line of text aligned within the logical rectangle r. Horizontal alignment is Left, Center or Right and vertical alignment is Top, Center or Bottom.
//
// Vertical text is rotated 90 degrees counter clockwise and reads bottom to top. The pixel rectangle and alignment are first rotated along: x spans [-ymax,-ymin] and y spans [xmin,xmax] in the rotated frame, the vertical alignment becomes the horizontal one (Top to Right, Bottom to Left) and the horizontal alignment becomes the vertical one (Left to Top, Right to Bottom). The text is then aligned in the rotated frame as usual.
func (p *Painter) DrawText(s string, r Rect, halign, valign TextAlign, font Font, brush Brush, orientation Orientation) {
	if s == "" || !brush.Visible() {
		return
	}
	surface := p.t.active
	metrics := surface.MeasureText(s, font)
	pr := p.pixelBounds(r)
	if orientation == Vertical {
		rr := Rect{-pr.Ymax, -pr.Ymin, pr.Xmin, pr.Xmax}
		halign, valign = rotateAlign(halign, valign)
		o := alignText(rr, halign, valign, metrics)
		surface.FillText(s, Point{o.Y, -o.X}, font, brush, Vertical)
		return
	}
	surface.FillText(s, alignText(pr, halign, valign, metrics), font, brush, Horizontal)
}

// rotateAlign returns the alignment in the frame rotated 90 degrees counter clockwise.
func rotateAlign(halign, valign TextAlign) (TextAlign, TextAlign) {
	h := Center
	switch valign {
	case Top:
		h = Right
	case Bottom:
		h = Left
	}
	v := Center
	switch halign {
	case Left:
		v = Top
	case Right:
		v = Bottom
	}
	return h, v
}

// alignText returns the baseline origin of a text line within the normalized rectangle r.
func alignText(r Rect, halign, valign TextAlign, m TextMetrics) Point {
	var x, y float64
	switch halign {
	case Center:
		x = (r.Xmin+r.Xmax)/2.0 - m.Width/2.0
	case Right:
		x = r.Xmax - m.Width
	default:
		x = r.Xmin
	}
	switch valign {
	case Center:
		y = (r.Ymin+r.Ymax)/2.0 + (m.Ascent-m.Descent)/2.0
	case Bottom:
		y = r.Ymax - m.Descent
	default:
		y = r.Ymin + m.Ascent
	}
	return Point{x, y}
}
