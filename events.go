package layercanvas

import "strconv"

// MouseEventType is the phase of a discrete pointer event.
type MouseEventType int

// see MouseEventType
const (
	MousePress MouseEventType = iota
	MouseMove
	MouseRelease
)

func (t MouseEventType) String() string {
	switch t {
	case MousePress:
		return "Press"
	case MouseMove:
		return "Move"
	case MouseRelease:
		return "Release"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// Buttons is a bitmask of pressed mouse buttons.
type Buttons uint8

// see Buttons
const (
	ButtonPrimary Buttons = 1 << iota
	ButtonSecondary
	ButtonTertiary
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

// see Modifiers
const (
	ModAlt Modifiers = 1 << iota
	ModCtrl          // also set for the meta/command key
	ModShift
)

// Alt returns true if the alt key is held.
func (m Modifiers) Alt() bool { return m&ModAlt != 0 }

// Ctrl returns true if the control or meta key is held.
func (m Modifiers) Ctrl() bool { return m&ModCtrl != 0 }

// Shift returns true if the shift key is held.
func (m Modifiers) Shift() bool { return m&ModShift != 0 }

// MouseEvent is a discrete pointer event at a single point. The compositor receives it in pixel space, handlers receive it in the layer's logical space.
type MouseEvent struct {
	Type      MouseEventType
	Point     Point
	Buttons   Buttons
	Modifiers Modifiers
}

// DragEvent describes a drag gesture from Anchor to Position. Rect spans both points in their original order. Released is set on the final event of the gesture.
type DragEvent struct {
	Rect     Rect
	Anchor   Point
	Position Point
	Released bool
	Shift    bool
}

// KeyEventType is the phase of a keyboard event.
type KeyEventType int

// see KeyEventType
const (
	KeyPress KeyEventType = iota
	KeyRelease
)

func (t KeyEventType) String() string {
	switch t {
	case KeyPress:
		return "Press"
	case KeyRelease:
		return "Release"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// KeyEvent is a keyboard event. Key is the host's key name (eg. "A", "Up", "Escape"), Code its key code if known.
type KeyEvent struct {
	Type      KeyEventType
	Key       string
	Code      int
	Modifiers Modifiers
}

// WheelEvent is a scroll wheel event. Deltas are in host units, positive DeltaY scrolls down.
type WheelEvent struct {
	DeltaX, DeltaY float64
	Modifiers      Modifiers
}

// PresenceEventType tells whether the pointer entered or left the surface.
type PresenceEventType int

// see PresenceEventType
const (
	PointerEnter PresenceEventType = iota
	PointerLeave
	PointerOut
)

func (t PresenceEventType) String() string {
	switch t {
	case PointerEnter:
		return "Enter"
	case PointerLeave:
		return "Leave"
	case PointerOut:
		return "Out"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// PresenceEvent is sent when the pointer enters or leaves the surface.
type PresenceEvent struct {
	Type PresenceEventType
}
