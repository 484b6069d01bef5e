package ports

import "github.com/samirrijal/mapdraw/internal/core/domain"

// ListenerID identifies one registration made through HostMap.On.
type ListenerID uint64

// HostEvent is what the host map delivers for a pointer event.
// Coordinate is nil when the host could not resolve a map position.
type HostEvent struct {
	Coordinate *domain.Coordinate
	WheelDelta float64
	Raw        any
	// PreventDefault suppresses the host's built-in reaction (zoom on
	// double-click or wheel). Nil when the host has none.
	PreventDefault func()
}

// HostHandler receives host pointer events.
type HostHandler func(ev HostEvent)

// HostMap is the subscribe/unsubscribe surface of the map the user draws on.
type HostMap interface {
	On(kind domain.EventKind, h HostHandler) ListenerID
	// Off must tolerate ids that are unknown or already removed.
	Off(kind domain.EventKind, id ListenerID)
}

// DispatchingHost is a HostMap that can also be fed events, used when the
// real map lives on the other side of a network connection.
type DispatchingHost interface {
	HostMap
	// Emit delivers ev to every listener of kind and returns how many ran.
	Emit(kind domain.EventKind, ev HostEvent) int
}

// CursorStyler is implemented by hosts that can change the pointer cursor.
type CursorStyler interface {
	CursorStyle() string
	SetCursorStyle(style string)
}
