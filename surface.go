package layercanvas

// Surface is a drawing target in pixel space, with the origin in the top-left corner and y pointing down. Its size is fixed during a paint call. Rectangles passed to a surface may have any orientation.
type Surface interface {
	Size() (int, int)

	// Clear resets the pixels in r to fully transparent.
	Clear(r Rect)
	FillRect(r Rect, brush Brush)
	StrokeRect(r Rect, pen Pen)
	FillEllipse(center Point, rx, ry float64, brush Brush)
	StrokeEllipse(center Point, rx, ry float64, pen Pen)
	FillPath(p *Path, brush Brush)
	StrokePath(p *Path, pen Pen)

	// FillText draws a single line of text with its baseline starting at origin. Vertical text is rotated counter clockwise around origin.
	FillText(s string, origin Point, font Font, brush Brush, orientation Orientation)
	MeasureText(s string, font Font) TextMetrics

	// Save pushes the clip state, Restore pops it.
	Save()
	Restore()
	// Clip restricts subsequent drawing to r intersected with the current clip.
	Clip(r Rect)

	// NewOffscreen returns an empty surface of the same size that can later be composited onto this one.
	NewOffscreen() Surface
	// Composite draws src over this surface. Surfaces only need to accept sources they created with NewOffscreen.
	Composite(src Surface)
}

// Resizer is implemented by surfaces that can change their pixel size, discarding their contents.
type Resizer interface {
	Resize(width, height int)
}

// FullRect returns the pixel region covering the whole surface.
func FullRect(s Surface) Rect {
	w, h := s.Size()
	return Rect{0.0, float64(w), 0.0, float64(h)}
}
