package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/tdewolff/layercanvas"
)

// Electrode is a hit target on the electrode map, in millimeters.
type Electrode struct {
	ID    int     `toml:"id"`
	Label string  `toml:"label"`
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
}

// Scene is the scene description read from a TOML file.
type Scene struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	Margin      float64 `toml:"margin"`
	RefreshRate float64 `toml:"refresh-rate"`

	Background string  `toml:"background"`
	Foreground string  `toml:"foreground"`
	Electrode  string  `toml:"electrode"`
	Selected   string  `toml:"selected"`
	PadSize    float64 `toml:"pad-size"`    // in millimeters
	MarkerSize float64 `toml:"marker-size"` // in pixels
	FontSize   float64 `toml:"font-size"`

	XLabel     string      `toml:"x-label"`
	YLabel     string      `toml:"y-label"`
	Electrodes []Electrode `toml:"electrodes"`

	layercanvas.Options
}

// DefaultScene is an electrode array of four columns of eight electrodes with a 20 micron pitch.
func DefaultScene() *Scene {
	s := &Scene{
		Width:      640,
		Height:     480,
		Margin:     48.0,
		Background: "#ffffff",
		Foreground: "#202020",
		Electrode:  "#1f77b4",
		Selected:   "#d62728",
		PadSize:    12.0,
		MarkerSize: 4.0,
		FontSize:   11.0,
		XLabel:     "x (µm)",
		YLabel:     "y (µm)",
		Options:    layercanvas.Options{DragThreshold: layercanvas.DefaultDragThreshold},
	}
	id := 0
	for col := 0; col < 4; col++ {
		for row := 0; row < 8; row++ {
			s.Electrodes = append(s.Electrodes, Electrode{
				ID:    id,
				Label: fmt.Sprintf("e%d", id),
				X:     float64(col) * 20.0,
				Y:     float64(row)*20.0 + float64(col%2)*10.0,
			})
			id++
		}
	}
	return s
}

// LoadScene reads a scene file. Unset fields keep their default values.
func LoadScene(filename string) (*Scene, error) {
	s := DefaultScene()
	if filename == "" {
		return s, nil
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	electrodes := s.Electrodes
	s.Electrodes = nil
	if err := toml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	} else if len(s.Electrodes) == 0 {
		s.Electrodes = electrodes
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

func (s *Scene) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", s.Width, s.Height)
	}
	seen := map[int]bool{}
	for _, e := range s.Electrodes {
		if seen[e.ID] {
			return fmt.Errorf("duplicate electrode id %d", e.ID)
		}
		seen[e.ID] = true
	}
	for _, c := range []string{s.Background, s.Foreground, s.Electrode, s.Selected} {
		if _, err := parseColor(c); err != nil {
			return err
		}
	}
	return nil
}

// parseColor parses a hex color such as "#1f77b4". An empty string is transparent.
func parseColor(s string) (color.Color, error) {
	if s == "" {
		return layercanvas.Transparent, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xff}, nil
}

func mustColor(s string) color.Color {
	c, err := parseColor(s)
	if err != nil {
		return layercanvas.Black
	}
	return c
}

// Bounds returns the region spanned by the electrodes, padded by one pad size.
func (s *Scene) Bounds() layercanvas.Rect {
	if len(s.Electrodes) == 0 {
		return layercanvas.Rect{0.0, 1.0, 0.0, 1.0}
	}
	r := layercanvas.Rect{s.Electrodes[0].X, s.Electrodes[0].X, s.Electrodes[0].Y, s.Electrodes[0].Y}
	for _, e := range s.Electrodes[1:] {
		r.Xmin = min(r.Xmin, e.X)
		r.Xmax = max(r.Xmax, e.X)
		r.Ymin = min(r.Ymin, e.Y)
		r.Ymax = max(r.Ymax, e.Y)
	}
	return layercanvas.Rect{r.Xmin - s.PadSize, r.Xmax + s.PadSize, r.Ymin - s.PadSize, r.Ymax + s.PadSize}
}

// Transform maps the electrode space, with y pointing up, into the plot area of a surface of the given size.
func (s *Scene) Transform(width, height int) layercanvas.Matrix {
	b := s.Bounds()
	plot := layercanvas.Rect{s.Margin, float64(width) - s.Margin/2.0, float64(height) - s.Margin, s.Margin / 2.0}
	return layercanvas.RectToRect(b, plot)
}
