package draw

import (
	"log/slog"
	"math"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
)

// CursorCrosshair is set on hosts that support it while a drawing mode is active.
const CursorCrosshair = "crosshair"

// modeEvents lists the host events each mode listens to.
var modeEvents = map[domain.Mode][]domain.EventKind{
	domain.ModeCollectingPolygon: {domain.EventPrimaryClick, domain.EventDoubleClick, domain.EventPointerMove},
	domain.ModePlacingCircle:     {domain.EventPrimaryClick, domain.EventWheel},
	domain.ModeDraggingRectangle: {domain.EventPrimaryClick, domain.EventDoubleClick, domain.EventPointerMove},
}

// EventFunc observes every host event the adapter forwarded to the machine.
type EventFunc func(kind domain.EventKind, out Outcome, err error)

type binding struct {
	kind domain.EventKind
	id   ports.ListenerID
}

// InputAdapter keeps host listeners in step with the machine's mode: it
// subscribes exactly the events the active mode needs, and nothing while Idle.
type InputAdapter struct {
	host      ports.HostMap
	machine   *Machine
	logger    *slog.Logger
	onEvent   EventFunc
	bindings  []binding
	gen       uint64
	closed    bool
	unwatch   func()
	savedCur  string
	cursorSet bool
}

// AdapterOption configures an InputAdapter.
type AdapterOption func(*InputAdapter)

// WithEventFunc registers fn to observe forwarded events, including
// validation failures.
func WithEventFunc(fn EventFunc) AdapterOption {
	return func(a *InputAdapter) { a.onEvent = fn }
}

// WithAdapterLogger overrides the machine's logger for the adapter.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(a *InputAdapter) { a.logger = l }
}

// NewInputAdapter attaches machine to host and binds the listeners of the
// machine's current mode.
func NewInputAdapter(host ports.HostMap, machine *Machine, opts ...AdapterOption) *InputAdapter {
	a := &InputAdapter{host: host, machine: machine, logger: machine.logger}
	for _, o := range opts {
		o(a)
	}
	a.unwatch = machine.OnModeChange(func(_, to domain.Mode) { a.rebind(to) })
	a.rebind(machine.Mode())
	return a
}

// Bound returns the event kinds currently subscribed on the host.
func (a *InputAdapter) Bound() []domain.EventKind {
	kinds := make([]domain.EventKind, len(a.bindings))
	for i, b := range a.bindings {
		kinds[i] = b.kind
	}
	return kinds
}

// Close removes every listener and detaches from the machine. It is safe to
// call more than once.
func (a *InputAdapter) Close() {
	if a.closed {
		return
	}
	a.unbind()
	a.restoreCursor()
	a.unwatch()
	a.closed = true
}

func (a *InputAdapter) rebind(mode domain.Mode) {
	if a.closed {
		return
	}
	a.unbind()

	kinds := modeEvents[mode]
	if len(kinds) == 0 {
		a.restoreCursor()
		return
	}

	gen := a.gen
	for _, kind := range kinds {
		id := a.host.On(kind, a.handler(kind, gen))
		a.bindings = append(a.bindings, binding{kind: kind, id: id})
	}
	a.setCursor()
}

// unbind removes exactly the listeners this adapter added and invalidates
// their handlers, so a host that still delivers to them is ignored.
func (a *InputAdapter) unbind() {
	for _, b := range a.bindings {
		a.host.Off(b.kind, b.id)
	}
	a.bindings = nil
	a.gen++
}

func (a *InputAdapter) handler(kind domain.EventKind, gen uint64) ports.HostHandler {
	return func(hev ports.HostEvent) {
		if a.closed || gen != a.gen {
			return
		}
		ev, ok := translate(kind, hev)
		if !ok {
			a.logger.Debug("malformed host event dropped", "event", kind)
			return
		}

		out, err := a.machine.Handle(ev)
		switch {
		case err == nil:
		case IsValidation(err):
			a.logger.Info("drawing input rejected", "event", kind, "reason", err.Error())
		default:
			a.logger.Error("drawing input refused", "event", kind, "error", err)
		}

		if out.Consumed && hev.PreventDefault != nil &&
			(kind == domain.EventDoubleClick || kind == domain.EventWheel) {
			hev.PreventDefault()
		}
		if a.onEvent != nil {
			a.onEvent(kind, out, err)
		}
	}
}

// translate turns a host event into an InputEvent. Events with a missing or
// non-finite coordinate are rejected, except wheel events, which only need a
// finite delta. A zero delta counts as a shrink step.
func translate(kind domain.EventKind, hev ports.HostEvent) (domain.InputEvent, bool) {
	ev := domain.InputEvent{Kind: kind}
	if kind == domain.EventWheel {
		if math.IsNaN(hev.WheelDelta) || math.IsInf(hev.WheelDelta, 0) {
			return ev, false
		}
		ev.WheelDelta = hev.WheelDelta
		if hev.Coordinate != nil && hev.Coordinate.Valid() {
			ev.Coordinate = *hev.Coordinate
		}
		return ev, true
	}
	if hev.Coordinate == nil || !hev.Coordinate.Valid() {
		return ev, false
	}
	ev.Coordinate = *hev.Coordinate
	return ev, true
}

func (a *InputAdapter) setCursor() {
	styler, ok := a.host.(ports.CursorStyler)
	if !ok {
		return
	}
	if !a.cursorSet {
		a.savedCur = styler.CursorStyle()
		a.cursorSet = true
	}
	styler.SetCursorStyle(CursorCrosshair)
}

func (a *InputAdapter) restoreCursor() {
	styler, ok := a.host.(ports.CursorStyler)
	if !ok || !a.cursorSet {
		return
	}
	styler.SetCursorStyle(a.savedCur)
	a.cursorSet = false
}
