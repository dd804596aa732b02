package layercanvas

import (
	"image/color"
	"strconv"
)

var (
	Transparent = color.RGBA{0x00, 0x00, 0x00, 0x00}
	Black       = color.RGBA{0x00, 0x00, 0x00, 0xff}
	White       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Gray        = color.RGBA{0x80, 0x80, 0x80, 0xff}
	Lightgray   = color.RGBA{0xd3, 0xd3, 0xd3, 0xff}
	Red         = color.RGBA{0xff, 0x00, 0x00, 0xff}
	Green       = color.RGBA{0x00, 0x80, 0x00, 0xff}
	Blue        = color.RGBA{0x00, 0x00, 0xff, 0xff}
	Orange      = color.RGBA{0xff, 0xa5, 0x00, 0xff}
	Yellow      = color.RGBA{0xff, 0xff, 0x00, 0xff}
	Magenta     = color.RGBA{0xff, 0x00, 0xff, 0xff}
	Cyan        = color.RGBA{0x00, 0xff, 0xff, 0xff}
)

// Pen is the stroke style. Width is in pixels and does not scale with the transformation.
type Pen struct {
	Color  color.Color
	Width  float64
	Dashes []float64 // alternating dash and gap lengths in pixels
}

// Visible returns false if the pen would not draw anything.
func (pen Pen) Visible() bool {
	return pen.Color != nil && 0.0 < pen.Width && !transparent(pen.Color)
}

// Brush is the fill style.
type Brush struct {
	Color color.Color
}

// Visible returns false if the brush would not draw anything.
func (b Brush) Visible() bool {
	return b.Color != nil && !transparent(b.Color)
}

func transparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

// Font describes a font face. Size is in pixels.
type Font struct {
	Family string // "sans" (default), "mono"
	Size   float64
	Bold   bool
}

// DefaultFont is a 12 pixel sans-serif font.
var DefaultFont = Font{Family: "sans", Size: 12.0}

// TextMetrics are the dimensions of a single line of text in pixels.
type TextMetrics struct {
	Width   float64
	Ascent  float64
	Descent float64 // positive, below the baseline
}

// TextAlign specifies how text aligns within its rectangle.
type TextAlign int

// see TextAlign
const (
	Left TextAlign = iota
	Right
	Center
	Top
	Bottom
)

func (ta TextAlign) String() string {
	switch ta {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Center:
		return "Center"
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	}
	return "Invalid(" + strconv.Itoa(int(ta)) + ")"
}

// Orientation is the reading direction of text.
type Orientation int

// see Orientation
const (
	Horizontal Orientation = iota
	Vertical               // rotated 90 degrees counter clockwise, reading bottom to top
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	}
	return "Invalid(" + strconv.Itoa(int(o)) + ")"
}
