package domain

import "fmt"

// Mode is the state of a drawing session.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCollectingPolygon
	ModePlacingCircle
	ModeDraggingRectangle
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCollectingPolygon:
		return "collecting_polygon"
	case ModePlacingCircle:
		return "placing_circle"
	case ModeDraggingRectangle:
		return "dragging_rectangle"
	}
	return "unknown"
}

// MarshalText renders the mode name in JSON payloads.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ModeFor returns the drawing mode that produces shapes of kind k.
func ModeFor(k ShapeKind) (Mode, bool) {
	switch k {
	case ShapePolygon:
		return ModeCollectingPolygon, true
	case ShapeCircle:
		return ModePlacingCircle, true
	case ShapeRectangle:
		return ModeDraggingRectangle, true
	}
	return ModeIdle, false
}

// EventKind is a pointer event type delivered by the host map.
type EventKind string

const (
	EventPrimaryClick EventKind = "primaryClick"
	EventDoubleClick  EventKind = "doubleClick"
	EventPointerMove  EventKind = "pointerMove"
	EventWheel        EventKind = "wheel"
)

// EventKinds lists every pointer event type.
var EventKinds = []EventKind{EventPrimaryClick, EventDoubleClick, EventPointerMove, EventWheel}

// ParseEventKind accepts one of the EventKinds names.
func ParseEventKind(s string) (EventKind, error) {
	for _, k := range EventKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEventKind, s)
}

// InputEvent is the neutral, already validated form of a host pointer event.
type InputEvent struct {
	Kind       EventKind
	Coordinate Coordinate
	WheelDelta float64
}
