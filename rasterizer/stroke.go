package rasterizer

import (
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/layercanvas"
)

// Tolerance is the maximum deviation in pixels when flattening ellipses, caps and joins.
var Tolerance = 0.1

type polygon []layercanvas.Point

// area returns the signed area, positive for clockwise polygons in pixel space.
func (poly polygon) area() float64 {
	a := 0.0
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2.0
}

// toPath converts a polyline in pixel space to a path.
func toPath(pts []layercanvas.Point, closed bool) *canvas.Path {
	p := &canvas.Path{}
	if len(pts) == 0 {
		return p
	} else if closed && 2 < len(pts) && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	if closed {
		p.Close()
	}
	return p
}

// ellipsePath returns the axis aligned ellipse with center c as two arcs.
func ellipsePath(c layercanvas.Point, rx, ry float64) *canvas.Path {
	p := &canvas.Path{}
	if rx == 0.0 || ry == 0.0 {
		return p
	}
	p.MoveTo(c.X+rx, c.Y)
	p.ArcTo(rx, ry, 0.0, false, true, c.X-rx, c.Y)
	p.ArcTo(rx, ry, 0.0, false, true, c.X+rx, c.Y)
	p.Close()
	return p
}

// polygons flattens p and returns its subpaths as polygons. Orientation is kept, so that holes of stroked outlines cancel out.
func polygons(p *canvas.Path) []polygon {
	polys := []polygon{}
	var poly polygon
	flush := func() {
		if 2 < len(poly) {
			polys = append(polys, poly)
		}
		poly = nil
	}

	scanner := p.Flatten(Tolerance).Scanner()
	for scanner.Scan() {
		end := scanner.End()
		switch scanner.Cmd() {
		case canvas.MoveToCmd:
			flush()
			poly = polygon{{end.X, end.Y}}
		case canvas.CloseCmd:
			flush()
		default:
			poly = append(poly, layercanvas.Point{end.X, end.Y})
		}
	}
	flush()
	return polys
}

// stroke returns the outline of p stroked with round caps and joins, dashed when the pen has dashes.
func stroke(p *canvas.Path, pen layercanvas.Pen) []polygon {
	if p.Empty() {
		return nil
	}
	if 0 < len(pen.Dashes) {
		p = p.Dash(0.0, pen.Dashes...)
	}
	return polygons(p.Stroke(pen.Width, canvas.RoundCap, canvas.RoundJoin, Tolerance))
}

// clipX clips the polygon to xmin <= x <= xmax. Coverage left or right of the rasterizer would be lost, while rows above and below are skipped by the rasterizer itself.
func (poly polygon) clipX(xmin, xmax float64) polygon {
	poly = poly.clipSide(xmin, 1.0)
	return poly.clipSide(xmax, -1.0)
}

// clipSide keeps the part of the polygon where dir*(x-x0) >= 0.
func (poly polygon) clipSide(x0, dir float64) polygon {
	if len(poly) == 0 {
		return poly
	}
	inside := func(p layercanvas.Point) bool {
		return 0.0 <= dir*(p.X-x0)
	}
	out := make(polygon, 0, len(poly)+2)
	prev := poly[len(poly)-1]
	for _, cur := range poly {
		if inside(cur) != inside(prev) {
			t := (x0 - prev.X) / (cur.X - prev.X)
			out = append(out, layercanvas.Point{x0, prev.Y + t*(cur.Y-prev.Y)})
		}
		if inside(cur) {
			out = append(out, cur)
		}
		prev = cur
	}
	return out
}
