package svg

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tdewolff/minify/v2"
)

// Precision is the number of significant digits of coordinates.
var Precision = 5

type num float64

func (f num) String() string {
	s := fmt.Sprintf("%.*g", Precision, f)
	if num(math.MaxInt32) < f || f < num(math.MinInt32) {
		if i := strings.IndexAny(s, ".eE"); i == -1 {
			s += ".0"
		}
	}
	return string(minify.Number([]byte(s), Precision))
}

type dec float64

func (f dec) String() string {
	s := fmt.Sprintf("%.*f", Precision, f)
	s = string(minify.Decimal([]byte(s), Precision))
	if dec(math.MaxInt32) < f || f < dec(math.MinInt32) {
		if i := strings.IndexByte(s, '.'); i == -1 {
			s += ".0"
		}
	}
	return s
}

// paint returns the hex color and opacity of c.
func paint(c color.Color) (string, float64) {
	_, _, _, a := c.RGBA()
	col, ok := colorful.MakeColor(c)
	if !ok {
		return "none", 0.0
	}
	return col.Hex(), float64(a) / 0xffff
}

// writePaint writes a fill or stroke attribute with its opacity.
func writePaint(b *strings.Builder, attr string, c color.Color) {
	hex, alpha := paint(c)
	fmt.Fprintf(b, ` %s="%s"`, attr, hex)
	if alpha < 1.0 && hex != "none" {
		fmt.Fprintf(b, ` %s-opacity="%v"`, attr, dec(alpha))
	}
}
