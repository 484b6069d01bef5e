// Package hostmap provides an in-process host map for drawing sessions whose
// real map runs in a browser. Pointer events arrive over WebSocket or REST and
// are emitted onto the bus; the bus records the cursor style the engine asks
// for so it can be sent back to the client.
package hostmap

import (
	"sync"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
)

// DefaultCursor is the cursor style reported before the engine sets one.
const DefaultCursor = "grab"

type listener struct {
	id ports.ListenerID
	h  ports.HostHandler
}

// Bus implements ports.DispatchingHost and ports.CursorStyler.
type Bus struct {
	mu        sync.Mutex
	next      ports.ListenerID
	listeners map[domain.EventKind][]listener
	cursor    string
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[domain.EventKind][]listener),
		cursor:    DefaultCursor,
	}
}

// On registers h for kind.
func (b *Bus) On(kind domain.EventKind, h ports.HostHandler) ports.ListenerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.listeners[kind] = append(b.listeners[kind], listener{id: b.next, h: h})
	return b.next
}

// Off removes the listener registered under id. Unknown ids are ignored.
func (b *Bus) Off(kind domain.EventKind, id ports.ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[kind]
	for i, l := range ls {
		if l.id == id {
			b.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.listeners[kind]) == 0 {
		delete(b.listeners, kind)
	}
}

// Emit delivers ev to the listeners of kind in registration order. Listeners
// removed by an earlier handler during the same dispatch are skipped. The bus
// lock is not held while handlers run, so they may call On and Off.
func (b *Bus) Emit(kind domain.EventKind, ev ports.HostEvent) int {
	b.mu.Lock()
	snapshot := append([]listener(nil), b.listeners[kind]...)
	b.mu.Unlock()

	ran := 0
	for _, l := range snapshot {
		if !b.registered(kind, l.id) {
			continue
		}
		l.h(ev)
		ran++
	}
	return ran
}

func (b *Bus) registered(kind domain.EventKind, id ports.ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.listeners[kind] {
		if l.id == id {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners for kind.
func (b *Bus) ListenerCount(kind domain.EventKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[kind])
}

// Kinds returns the event kinds that currently have at least one listener.
func (b *Bus) Kinds() []domain.EventKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.EventKind
	for _, k := range domain.EventKinds {
		if len(b.listeners[k]) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// CursorStyle returns the cursor style last set by the engine.
func (b *Bus) CursorStyle() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// SetCursorStyle records the cursor style for the client.
func (b *Bus) SetCursorStyle(style string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = style
}
