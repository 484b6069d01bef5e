package draw_test

import (
	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
)

// --- Fake host map ---

type listener struct {
	id ports.ListenerID
	h  ports.HostHandler
}

type fakeHost struct {
	next      ports.ListenerID
	listeners map[domain.EventKind][]listener
	offCalls  int
	cursor    string
}

func newFakeHost() *fakeHost {
	return &fakeHost{listeners: make(map[domain.EventKind][]listener), cursor: "grab"}
}

func (h *fakeHost) On(kind domain.EventKind, fn ports.HostHandler) ports.ListenerID {
	h.next++
	h.listeners[kind] = append(h.listeners[kind], listener{id: h.next, h: fn})
	return h.next
}

func (h *fakeHost) Off(kind domain.EventKind, id ports.ListenerID) {
	h.offCalls++
	ls := h.listeners[kind]
	for i, l := range ls {
		if l.id == id {
			h.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (h *fakeHost) emit(kind domain.EventKind, ev ports.HostEvent) {
	for _, l := range append([]listener(nil), h.listeners[kind]...) {
		l.h(ev)
	}
}

func (h *fakeHost) count(kind domain.EventKind) int { return len(h.listeners[kind]) }

func (h *fakeHost) total() int {
	n := 0
	for _, ls := range h.listeners {
		n += len(ls)
	}
	return n
}

func (h *fakeHost) CursorStyle() string         { return h.cursor }
func (h *fakeHost) SetCursorStyle(style string) { h.cursor = style }

func (h *fakeHost) click(lng, lat float64) {
	h.emit(domain.EventPrimaryClick, ports.HostEvent{Coordinate: &domain.Coordinate{Longitude: lng, Latitude: lat}})
}

func (h *fakeHost) move(lng, lat float64) {
	h.emit(domain.EventPointerMove, ports.HostEvent{Coordinate: &domain.Coordinate{Longitude: lng, Latitude: lat}})
}

// dblclick returns whether the default zoom was suppressed.
func (h *fakeHost) dblclick(lng, lat float64) bool {
	prevented := false
	h.emit(domain.EventDoubleClick, ports.HostEvent{
		Coordinate:     &domain.Coordinate{Longitude: lng, Latitude: lat},
		PreventDefault: func() { prevented = true },
	})
	return prevented
}

func (h *fakeHost) wheel(delta float64) {
	h.emit(domain.EventWheel, ports.HostEvent{WheelDelta: delta})
}

// --- Recording observer ---

type recorder struct {
	created []int
	updated []int
	deleted [][]int
}

func (r *recorder) ShapeCreated(id int, _ domain.Shape) { r.created = append(r.created, id) }
func (r *recorder) ShapeUpdated(id int, _ domain.Shape) { r.updated = append(r.updated, id) }
func (r *recorder) ShapesDeleted(ids []int)             { r.deleted = append(r.deleted, ids) }

func coord(lng, lat float64) domain.Coordinate {
	return domain.Coordinate{Longitude: lng, Latitude: lat}
}

func click(lng, lat float64) domain.InputEvent {
	return domain.InputEvent{Kind: domain.EventPrimaryClick, Coordinate: coord(lng, lat)}
}

func move(lng, lat float64) domain.InputEvent {
	return domain.InputEvent{Kind: domain.EventPointerMove, Coordinate: coord(lng, lat)}
}

func dblclick(lng, lat float64) domain.InputEvent {
	return domain.InputEvent{Kind: domain.EventDoubleClick, Coordinate: coord(lng, lat)}
}

func wheel(delta float64) domain.InputEvent {
	return domain.InputEvent{Kind: domain.EventWheel, WheelDelta: delta}
}
