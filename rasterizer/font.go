package rasterizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tdewolff/layercanvas"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce sync.Once
	fontsErr  error
	fonts     map[fontKey]*opentype.Font
)

type fontKey struct {
	mono, bold bool
}

type faceKey struct {
	fontKey
	size float64
}

func loadFonts() error {
	fontsOnce.Do(func() {
		data := map[fontKey][]byte{
			{false, false}: goregular.TTF,
			{false, true}:  gobold.TTF,
			{true, false}:  gomono.TTF,
			{true, true}:   gomonobold.TTF,
		}
		fonts = map[fontKey]*opentype.Font{}
		for key, b := range data {
			f, err := opentype.Parse(b)
			if err != nil {
				fontsErr = fmt.Errorf("parse font: %w", err)
				return
			}
			fonts[key] = f
		}
	})
	return fontsErr
}

// Faces caches the Go font faces used for text. Faces are not safe for concurrent use, so surfaces do not share them.
type Faces map[faceKey]font.Face

// NewFaces returns an empty font face cache.
func NewFaces() Faces {
	return Faces{}
}

// Face returns the font face for a font description. Families containing "mono" select Go Mono, all others Go Regular.
func (faces Faces) Face(f layercanvas.Font) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	size := f.Size
	if size <= 0.0 {
		size = layercanvas.DefaultFont.Size
	}
	key := faceKey{fontKey{strings.Contains(strings.ToLower(f.Family), "mono"), f.Bold}, size}
	if face, ok := faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(fonts[key.fontKey], &opentype.FaceOptions{
		Size:    size,
		DPI:     72.0, // points equal pixels
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	faces[key] = face
	return face, nil
}

func fromFixed(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}

func toFixed(x float64) fixed.Int26_6 {
	return fixed.Int26_6(x * 64.0)
}

func fixedPoint(p layercanvas.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(p.X), Y: toFixed(p.Y)}
}

// Measure returns the metrics of text in the face for f.
func (faces Faces) Measure(text string, f layercanvas.Font) (layercanvas.TextMetrics, error) {
	face, err := faces.Face(f)
	if err != nil {
		return layercanvas.TextMetrics{}, err
	}
	return measure(face, text), nil
}

// measure returns the metrics of s in face.
func measure(face font.Face, s string) layercanvas.TextMetrics {
	metrics := face.Metrics()
	return layercanvas.TextMetrics{
		Width:   fromFixed(font.MeasureString(face, s)),
		Ascent:  fromFixed(metrics.Ascent),
		Descent: fromFixed(metrics.Descent),
	}
}
