package layercanvas

import (
	"math"
	"strconv"
)

// PathCmd is a path command.
type PathCmd float64

// see PathCmd
const (
	MoveToCmd PathCmd = iota
	LineToCmd
	CloseCmd
)

// cmdLen returns the number of values of a command, including the command itself at the start and end.
func cmdLen(cmd PathCmd) int {
	switch cmd {
	case MoveToCmd, LineToCmd, CloseCmd:
		return 4
	}
	panic("unknown path command")
}

// Path is a list of moveTo, lineTo and close actions. Every command is stored as the command, its end point and the command again, so the list can be walked in both directions. Paths are expressed in whatever coordinate space they are drawn in, and are transformed point by point.
type Path struct {
	d []float64
}

// Line returns a path of a single line segment.
func Line(x0, y0, x1, y1 float64) *Path {
	p := &Path{}
	p.MoveTo(x0, y0)
	p.LineTo(x1, y1)
	return p
}

// Polyline returns a path through the given points.
func Polyline(pts ...Point) *Path {
	p := &Path{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	return p
}

// Empty returns true if p is an empty path or consists of only MoveTos.
func (p *Path) Empty() bool {
	for i := 0; i < len(p.d); i += cmdLen(PathCmd(p.d[i])) {
		if PathCmd(p.d[i]) != MoveToCmd {
			return false
		}
	}
	return true
}

// Len returns the number of commands.
func (p *Path) Len() int {
	n := 0
	for i := 0; i < len(p.d); i += cmdLen(PathCmd(p.d[i])) {
		n++
	}
	return n
}

// Copy returns a copy of p.
func (p *Path) Copy() *Path {
	return &Path{append([]float64{}, p.d...)}
}

// Pos returns the current position of the path, which is the end point of the last command.
func (p *Path) Pos() Point {
	if 0 < len(p.d) {
		return Point{p.d[len(p.d)-3], p.d[len(p.d)-2]}
	}
	return Point{}
}

// StartPos returns the start point of the current subpath.
func (p *Path) StartPos() Point {
	for i := len(p.d); 0 < i; {
		cmd := PathCmd(p.d[i-1])
		if cmd == MoveToCmd {
			return Point{p.d[i-3], p.d[i-2]}
		}
		i -= cmdLen(cmd)
	}
	return Point{}
}

////////////////////////////////////////////////////////////////

// MoveTo moves the path to (x,y) without connecting it, starting a new subpath.
func (p *Path) MoveTo(x, y float64) *Path {
	if 0 < len(p.d) && PathCmd(p.d[len(p.d)-1]) == MoveToCmd {
		p.d[len(p.d)-3] = x
		p.d[len(p.d)-2] = y
		return p
	}
	p.d = append(p.d, float64(MoveToCmd), x, y, float64(MoveToCmd))
	return p
}

// LineTo adds a linear path to (x,y). A path without a previous MoveTo starts at the origin.
func (p *Path) LineTo(x, y float64) *Path {
	if len(p.d) == 0 {
		p.MoveTo(0.0, 0.0)
	}
	p.d = append(p.d, float64(LineToCmd), x, y, float64(LineToCmd))
	return p
}

// Close closes the current subpath back to its start point.
func (p *Path) Close() *Path {
	if len(p.d) == 0 || PathCmd(p.d[len(p.d)-1]) == CloseCmd {
		return p
	}
	start := p.StartPos()
	p.d = append(p.d, float64(CloseCmd), start.X, start.Y, float64(CloseCmd))
	return p
}

////////////////////////////////////////////////////////////////

// Transform returns a new path with every point mapped through m.
func (p *Path) Transform(m Matrix) *Path {
	q := p.Copy()
	for i := 0; i < len(q.d); i += cmdLen(PathCmd(q.d[i])) {
		pt := m.Dot(Point{q.d[i+1], q.d[i+2]})
		q.d[i+1], q.d[i+2] = pt.X, pt.Y
	}
	return q
}

// Bounds returns the normalized bounding box of the path.
func (p *Path) Bounds() Rect {
	if len(p.d) == 0 {
		return Rect{}
	}
	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	for i := 0; i < len(p.d); i += cmdLen(PathCmd(p.d[i])) {
		xmin = math.Min(xmin, p.d[i+1])
		xmax = math.Max(xmax, p.d[i+1])
		ymin = math.Min(ymin, p.d[i+2])
		ymax = math.Max(ymax, p.d[i+2])
	}
	return Rect{xmin, xmax, ymin, ymax}
}

// Subpath is a list of connected points, closed when the last segment returns to the first point.
type Subpath struct {
	Points []Point
	Closed bool
}

// Subpaths splits the path into its subpaths. Subpaths with fewer than two points are dropped.
func (p *Path) Subpaths() []Subpath {
	sps := []Subpath{}
	cur := Subpath{}
	flush := func() {
		if 1 < len(cur.Points) {
			sps = append(sps, cur)
		}
		cur = Subpath{}
	}
	for i := 0; i < len(p.d); i += cmdLen(PathCmd(p.d[i])) {
		pt := Point{p.d[i+1], p.d[i+2]}
		switch PathCmd(p.d[i]) {
		case MoveToCmd:
			flush()
			cur.Points = append(cur.Points, pt)
		case LineToCmd:
			cur.Points = append(cur.Points, pt)
		case CloseCmd:
			cur.Points = append(cur.Points, pt)
			cur.Closed = true
			flush()
			cur.Points = append(cur.Points, pt)
		}
	}
	flush()
	return sps
}

// String returns a string that represents the path similar to the SVG path data format.
func (p *Path) String() string {
	s := ""
	for i := 0; i < len(p.d); i += cmdLen(PathCmd(p.d[i])) {
		switch PathCmd(p.d[i]) {
		case MoveToCmd:
			s += "M" + num(p.d[i+1]) + " " + num(p.d[i+2])
		case LineToCmd:
			s += "L" + num(p.d[i+1]) + " " + num(p.d[i+2])
		case CloseCmd:
			s += "z"
		}
	}
	return s
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
