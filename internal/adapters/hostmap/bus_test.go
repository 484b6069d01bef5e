package hostmap

import (
	"testing"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
)

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var calls []int
	b.On(domain.EventPrimaryClick, func(ports.HostEvent) { calls = append(calls, 1) })
	b.On(domain.EventPrimaryClick, func(ports.HostEvent) { calls = append(calls, 2) })
	b.On(domain.EventWheel, func(ports.HostEvent) { calls = append(calls, 3) })

	if n := b.Emit(domain.EventPrimaryClick, ports.HostEvent{}); n != 2 {
		t.Errorf("expected 2 handlers, got %d", n)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("unexpected call order %v", calls)
	}
}

func TestBus_Off(t *testing.T) {
	b := NewBus()
	id := b.On(domain.EventWheel, func(ports.HostEvent) {})
	b.Off(domain.EventWheel, id)
	b.Off(domain.EventWheel, id)
	b.Off(domain.EventPointerMove, 99)

	if n := b.ListenerCount(domain.EventWheel); n != 0 {
		t.Errorf("expected no listeners, got %d", n)
	}
	if n := b.Emit(domain.EventWheel, ports.HostEvent{}); n != 0 {
		t.Errorf("removed listener ran")
	}
}

func TestBus_HandlerMayRebind(t *testing.T) {
	b := NewBus()
	var second ports.ListenerID
	ranSecond := false
	b.On(domain.EventDoubleClick, func(ports.HostEvent) {
		b.Off(domain.EventDoubleClick, second)
		b.On(domain.EventPrimaryClick, func(ports.HostEvent) {})
	})
	second = b.On(domain.EventDoubleClick, func(ports.HostEvent) { ranSecond = true })

	if n := b.Emit(domain.EventDoubleClick, ports.HostEvent{}); n != 1 {
		t.Errorf("expected 1 handler, got %d", n)
	}
	if ranSecond {
		t.Error("listener removed during dispatch was called")
	}
	kinds := b.Kinds()
	if len(kinds) != 2 {
		t.Errorf("unexpected kinds %v", kinds)
	}
}

func TestBus_CursorStyle(t *testing.T) {
	b := NewBus()
	if b.CursorStyle() != DefaultCursor {
		t.Errorf("unexpected default %q", b.CursorStyle())
	}
	b.SetCursorStyle("crosshair")
	if b.CursorStyle() != "crosshair" {
		t.Errorf("cursor not stored")
	}
}
