package layercanvas

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Epsilon is the tolerance used when comparing coordinates and matrix coefficients.
var Epsilon = 1e-10

// ErrSingular is returned when a transformation matrix cannot be inverted.
var ErrSingular = errors.New("singular transformation matrix")

// Equal returns true if a and b are equal with tolerance Epsilon.
func Equal(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, Epsilon)
}

////////////////////////////////////////////////////////////////

// Point is a coordinate in 2D space. Whether it is logical or pixel space depends on the transformation that produced it.
type Point struct {
	X, Y float64
}

// IsZero returns true if P is exactly zero.
func (p Point) IsZero() bool {
	return p.X == 0.0 && p.Y == 0.0
}

// Equals returns true if P and Q are equal with tolerance Epsilon.
func (p Point) Equals(q Point) bool {
	return Equal(p.X, q.X) && Equal(p.Y, q.Y)
}

// Add adds Q to P.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub subtracts Q from P.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul multiplies x and y by f.
func (p Point) Mul(f float64) Point {
	return Point{f * p.X, f * p.Y}
}

// Div divides x and y by f.
func (p Point) Div(f float64) Point {
	return Point{p.X / f, p.Y / f}
}

// Length returns the length of OP.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

////////////////////////////////////////////////////////////////

// Rect is a rectangular region. After a transformation Xmin may be larger than Xmax (and Ymin larger than Ymax) when an axis was flipped; use W and H for the extent.
type Rect struct {
	Xmin, Xmax, Ymin, Ymax float64
}

// RectFromPoints returns the region spanned by two corner points, keeping their order.
func RectFromPoints(a, b Point) Rect {
	return Rect{a.X, b.X, a.Y, b.Y}
}

// W returns the absolute width.
func (r Rect) W() float64 {
	return math.Abs(r.Xmax - r.Xmin)
}

// H returns the absolute height.
func (r Rect) H() float64 {
	return math.Abs(r.Ymax - r.Ymin)
}

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{(r.Xmin + r.Xmax) / 2.0, (r.Ymin + r.Ymax) / 2.0}
}

// Normalize swaps the bounds so that Xmin <= Xmax and Ymin <= Ymax.
func (r Rect) Normalize() Rect {
	if r.Xmax < r.Xmin {
		r.Xmin, r.Xmax = r.Xmax, r.Xmin
	}
	if r.Ymax < r.Ymin {
		r.Ymin, r.Ymax = r.Ymax, r.Ymin
	}
	return r
}

// Contains returns true if p lies inside or on the border of the region, regardless of axis orientation.
func (r Rect) Contains(p Point) bool {
	n := r.Normalize()
	return n.Xmin <= p.X && p.X <= n.Xmax && n.Ymin <= p.Y && p.Y <= n.Ymax
}

// ContainsRect returns true if q lies completely inside the region, regardless of axis orientation.
func (r Rect) ContainsRect(q Rect) bool {
	return r.Contains(Point{q.Xmin, q.Ymin}) && r.Contains(Point{q.Xmax, q.Ymax})
}

// Overlaps returns true if both regions share at least one point, regardless of axis orientation.
func (r Rect) Overlaps(q Rect) bool {
	a, b := r.Normalize(), q.Normalize()
	return a.Xmin <= b.Xmax && b.Xmin <= a.Xmax && a.Ymin <= b.Ymax && b.Ymin <= a.Ymax
}

// Intersect returns the normalized overlap of both regions, or false if they don't overlap.
func (r Rect) Intersect(q Rect) (Rect, bool) {
	if !r.Overlaps(q) {
		return Rect{}, false
	}
	a, b := r.Normalize(), q.Normalize()
	return Rect{
		math.Max(a.Xmin, b.Xmin), math.Min(a.Xmax, b.Xmax),
		math.Max(a.Ymin, b.Ymin), math.Min(a.Ymax, b.Ymax),
	}, true
}

// Transform maps both corners through m. The bounds are not reordered, so a flipping transformation yields an inverted region. Rotations other than multiples of 90 degrees only map the two corners.
func (r Rect) Transform(m Matrix) Rect {
	p0 := m.Dot(Point{r.Xmin, r.Ymin})
	p1 := m.Dot(Point{r.Xmax, r.Ymax})
	return Rect{p0.X, p1.X, p0.Y, p1.Y}
}

// Equals returns true if all bounds are equal with tolerance Epsilon.
func (r Rect) Equals(q Rect) bool {
	return Equal(r.Xmin, q.Xmin) && Equal(r.Xmax, q.Xmax) && Equal(r.Ymin, q.Ymin) && Equal(r.Ymax, q.Ymax)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", r.Xmin, r.Ymin, r.Xmax, r.Ymax)
}

////////////////////////////////////////////////////////////////

// Matrix is an affine transformation in homogeneous coordinates, a 3x3 matrix of which the bottom row is always [0 0 1]. Be aware that concatenating transformation functions is evaluated right-to-left! Identity.Translate(100,100).Scale(2,-2) first scales a point and then translates it.
type Matrix [2][3]float64

// Identity is the identity transformation.
var Identity = Matrix{
	{1.0, 0.0, 0.0},
	{0.0, 1.0, 0.0},
}

// Compose returns the transformation that maps a point by child first and then by parent. Nesting a child coordinate system in a parent is thus Compose(parent, child).
func Compose(parent, child Matrix) Matrix {
	return parent.Mul(child)
}

// FromFunc derives an affine transformation by sampling f at the origin and at both unit vectors. If f is not affine the result is only the linear approximation at the origin.
func FromFunc(f func(Point) Point) Matrix {
	o := f(Point{0.0, 0.0})
	ex := f(Point{1.0, 0.0}).Sub(o)
	ey := f(Point{0.0, 1.0}).Sub(o)
	return Matrix{
		{ex.X, ey.X, o.X},
		{ex.Y, ey.Y, o.Y},
	}
}

// RectToRect returns the affine transformation that maps region from onto region to, including flips when their orientations differ.
func RectToRect(from, to Rect) Matrix {
	sx := (to.Xmax - to.Xmin) / (from.Xmax - from.Xmin)
	sy := (to.Ymax - to.Ymin) / (from.Ymax - from.Ymin)
	return FromFunc(func(p Point) Point {
		return Point{
			to.Xmin + (p.X-from.Xmin)*sx,
			to.Ymin + (p.Y-from.Ymin)*sy,
		}
	})
}

// Mul multiplies the current matrix by q, ie. q is applied to a point before m.
func (m Matrix) Mul(q Matrix) Matrix {
	return Matrix{{
		m[0][0]*q[0][0] + m[0][1]*q[1][0],
		m[0][0]*q[0][1] + m[0][1]*q[1][1],
		m[0][0]*q[0][2] + m[0][1]*q[1][2] + m[0][2],
	}, {
		m[1][0]*q[0][0] + m[1][1]*q[1][0],
		m[1][0]*q[0][1] + m[1][1]*q[1][1],
		m[1][0]*q[0][2] + m[1][1]*q[1][2] + m[1][2],
	}}
}

// Dot returns the dot product between the matrix and the given vector, ie. applies the transformation.
func (m Matrix) Dot(p Point) Point {
	return Point{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2],
	}
}

// Translate adds a translation in x and y.
func (m Matrix) Translate(x, y float64) Matrix {
	return m.Mul(Matrix{
		{1.0, 0.0, x},
		{0.0, 1.0, y},
	})
}

// Rotate adds a rotation transformation with rot in degrees counter clockwise.
func (m Matrix) Rotate(rot float64) Matrix {
	sintheta, costheta := math.Sincos(rot * math.Pi / 180.0)
	return m.Mul(Matrix{
		{costheta, -sintheta, 0.0},
		{sintheta, costheta, 0.0},
	})
}

// Scale adds a scaling transformation in sx and sy. A negative scale flips the axis. Scaling to zero yields a singular matrix.
func (m Matrix) Scale(sx, sy float64) Matrix {
	return m.Mul(Matrix{
		{sx, 0.0, 0.0},
		{0.0, sy, 0.0},
	})
}

// Det returns the matrix determinant.
func (m Matrix) Det() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Invertible returns false when the determinant is (almost) zero relative to the products it is computed from, so that matrices with tiny but non-zero scales remain invertible.
func (m Matrix) Invertible() bool {
	det := m.Det()
	if math.IsNaN(det) || math.IsInf(det, 0) {
		return false
	}
	scale := math.Abs(m[0][0]*m[1][1]) + math.Abs(m[0][1]*m[1][0])
	return Epsilon*scale < math.Abs(det)
}

// Inv returns the inverse of the matrix, or ErrSingular when its determinant is zero.
func (m Matrix) Inv() (Matrix, error) {
	if !m.Invertible() {
		return Identity, fmt.Errorf("%w: %v", ErrSingular, m)
	}
	det := m.Det()
	return Matrix{{
		m[1][1] / det,
		-m[0][1] / det,
		-(m[1][1]*m[0][2] - m[0][1]*m[1][2]) / det,
	}, {
		-m[1][0] / det,
		m[0][0] / det,
		-(-m[1][0]*m[0][2] + m[0][0]*m[1][2]) / det,
	}}, nil
}

// InvOrIdentity returns the inverse of the matrix. A singular matrix is logged and replaced by the identity.
func (m Matrix) InvOrIdentity() Matrix {
	inv, err := m.Inv()
	if err != nil {
		logger.Warn("cannot invert transformation, using identity", "error", err)
		return Identity
	}
	return inv
}

// IsTranslation returns true if the matrix only translates.
func (m Matrix) IsTranslation() bool {
	return Equal(m[0][0], 1.0) && Equal(m[0][1], 0.0) && Equal(m[1][0], 0.0) && Equal(m[1][1], 1.0)
}

// Equals returns true if both matrices are equal with tolerance Epsilon.
func (m Matrix) Equals(q Matrix) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if !Equal(m[i][j], q[i][j]) {
				return false
			}
		}
	}
	return true
}

func (m Matrix) String() string {
	return fmt.Sprintf("[%g, %g, %g; %g, %g, %g; 0, 0, 1]", m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2])
}
