package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/draw"
	"github.com/samirrijal/mapdraw/internal/core/ports"
)

var tracer = otel.Tracer("github.com/samirrijal/mapdraw/internal/core/usecases")

// ErrWorkspaceClosed is returned by calls on a closed workspace.
var ErrWorkspaceClosed = errors.New("workspace closed")

// Report summarises what a workspace did with one host event.
// PreventDefault tells a remote host to suppress its own reaction to the
// event, such as zooming on double-click or wheel.
type Report struct {
	Event          domain.EventKind `json:"event"`
	Mode           domain.Mode      `json:"mode"`
	Consumed       bool             `json:"consumed"`
	Committed      int              `json:"committed,omitempty"`
	Warning        string           `json:"warning,omitempty"`
	PreventDefault bool             `json:"prevent_default,omitempty"`
}

// SessionInfo describes a workspace for listings.
type SessionInfo struct {
	ID        string             `json:"id"`
	Mode      domain.Mode        `json:"mode"`
	Shapes    int                `json:"shapes"`
	Listening []domain.EventKind `json:"listening"`
	Cursor    string             `json:"cursor,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Workspace is one drawing engine bound to its own host. The engine is not
// safe for concurrent use; every call into it goes through mu.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	host      ports.DispatchingHost
	machine   *draw.Machine
	adapter   *draw.InputAdapter
	shapes    *draw.Collection
	projector *draw.Projector
	logger    *slog.Logger
	closed    bool

	// set by the adapter while an Emit is in flight
	last    draw.Outcome
	lastErr error

	onEvent func(kind domain.EventKind, r Report, err error)
}

func newWorkspace(id string, host ports.DispatchingHost, opts draw.Options, logger *slog.Logger) *Workspace {
	opts.Logger = logger
	shapes := draw.NewCollection(opts.CircleSteps)
	machine := draw.NewMachine(shapes, opts)
	w := &Workspace{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		host:      host,
		machine:   machine,
		shapes:    shapes,
		projector: draw.NewProjector(opts.CircleSteps),
		logger:    logger,
	}
	w.adapter = draw.NewInputAdapter(host, machine, draw.WithEventFunc(func(_ domain.EventKind, out draw.Outcome, err error) {
		w.last, w.lastErr = out, err
	}))
	return w
}

// SelectMode starts drawing a shape of kind.
func (w *Workspace) SelectMode(kind domain.ShapeKind) (domain.Mode, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ModeIdle, ErrWorkspaceClosed
	}
	if err := w.machine.SelectMode(kind); err != nil {
		return w.machine.Mode(), err
	}
	return w.machine.Mode(), nil
}

// Cancel discards unfinished input.
func (w *Workspace) Cancel() (domain.Mode, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ModeIdle, ErrWorkspaceClosed
	}
	w.machine.Cancel()
	return w.machine.Mode(), nil
}

// Finish commits the current input without a closing gesture.
func (w *Workspace) Finish() (Report, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return Report{}, ErrWorkspaceClosed
	}
	out, err := w.machine.Finish()
	r := Report{Mode: w.machine.Mode(), Consumed: out.Consumed, Committed: out.ShapeID}
	if draw.IsValidation(err) {
		r.Warning = err.Error()
		return r, nil
	}
	return r, err
}

// Deliver emits a host event onto the workspace's host and reports the
// outcome, including whether the engine asked to prevent the host default. Malformed events and events the current mode does not listen to
// are reported as not consumed. Validation failures are returned in
// Report.Warning, not as an error.
func (w *Workspace) Deliver(ctx context.Context, kind domain.EventKind, ev ports.HostEvent) (Report, error) {
	_, span := tracer.Start(ctx, "workspace.deliver")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", w.ID), attribute.String("draw.event", string(kind)))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return Report{}, ErrWorkspaceClosed
	}

	prevented := false
	hostPrevent := ev.PreventDefault
	ev.PreventDefault = func() {
		prevented = true
		if hostPrevent != nil {
			hostPrevent()
		}
	}

	w.last, w.lastErr = draw.Outcome{}, nil
	w.host.Emit(kind, ev)

	r := Report{
		Event:          kind,
		Mode:           w.machine.Mode(),
		Consumed:       w.last.Consumed,
		Committed:      w.last.ShapeID,
		PreventDefault: prevented,
	}
	err := w.lastErr
	if draw.IsValidation(err) {
		r.Warning = err.Error()
		err = nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Bool("draw.consumed", r.Consumed))
	if w.onEvent != nil {
		w.onEvent(kind, r, w.lastErr)
	}
	return r, err
}

// Mode returns the current drawing mode.
func (w *Workspace) Mode() domain.Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Mode()
}

// Snapshot returns a copy of the in-progress drawing state.
func (w *Workspace) Snapshot() draw.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Snapshot()
}

// Preview returns the transient geometry of the shape being drawn.
func (w *Workspace) Preview() *geojson.FeatureCollection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.projector.Project(w.machine.Snapshot())
}

// Shapes returns the committed shapes of the given kinds as GeoJSON.
func (w *Workspace) Shapes(kinds ...domain.ShapeKind) *geojson.FeatureCollection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shapes.FeatureCollection(kinds...)
}

// Records returns the committed shapes of the given kinds.
func (w *Workspace) Records(kinds ...domain.ShapeKind) []draw.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shapes.Records(kinds...)
}

// RemoveShapes drops committed shapes and returns the ids that existed.
func (w *Workspace) RemoveShapes(ids ...int) ([]int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrWorkspaceClosed
	}
	return w.shapes.Remove(ids...), nil
}

// ReplaceShape swaps the committed shape stored under id.
func (w *Workspace) ReplaceShape(id int, s domain.Shape) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWorkspaceClosed
	}
	return w.shapes.Replace(id, s)
}

// Watch registers o for collection changes. o is called with the workspace
// lock held and must not call back into the workspace.
func (w *Workspace) Watch(o ports.ShapeObserver) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	stop := w.shapes.Observe(o)
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		stop()
	}
}

// Info describes the workspace.
func (w *Workspace) Info() SessionInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	info := SessionInfo{
		ID:        w.ID,
		Mode:      w.machine.Mode(),
		Shapes:    w.shapes.Len(),
		Listening: w.adapter.Bound(),
		CreatedAt: w.CreatedAt,
	}
	if styler, ok := w.host.(ports.CursorStyler); ok {
		info.Cursor = styler.CursorStyle()
	}
	return info
}

// Close tears down the host listeners. Further calls fail with
// ErrWorkspaceClosed.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.adapter.Close()
	w.closed = true
}
