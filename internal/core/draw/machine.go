package draw

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/pkg/geospatial"
)

// Options tunes the drawing engine.
type Options struct {
	CircleSteps         int
	DefaultRadiusMeters float64
	RadiusStepMeters    float64
	Logger              *slog.Logger
}

// DefaultOptions returns the stock engine settings.
func DefaultOptions() Options {
	return Options{
		CircleSteps:         geospatial.DefaultCircleSteps,
		DefaultRadiusMeters: 100,
		RadiusStepMeters:    20,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CircleSteps <= 0 {
		o.CircleSteps = d.CircleSteps
	}
	if o.DefaultRadiusMeters < domain.MinCircleRadiusMeters {
		o.DefaultRadiusMeters = d.DefaultRadiusMeters
	}
	if o.RadiusStepMeters <= 0 {
		o.RadiusStepMeters = d.RadiusStepMeters
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Outcome describes what the machine did with one input event.
type Outcome struct {
	// Consumed is false when the current state has no transition for the event.
	Consumed bool
	// ShapeID is the id of the shape committed by this event, or 0.
	ShapeID int
}

// ModeChangeFunc is called synchronously after every mode transition.
type ModeChangeFunc func(from, to domain.Mode)

type handlerFunc func(m *Machine, ev domain.InputEvent) (Outcome, error)

// state is a mode plus whether its first point (circle center, rectangle
// anchor) has been placed.
type state struct {
	mode  domain.Mode
	armed bool
}

var transitions = map[state]map[domain.EventKind]handlerFunc{
	{domain.ModeCollectingPolygon, false}: {
		domain.EventPrimaryClick: (*Machine).addVertex,
		domain.EventPointerMove:  (*Machine).hintCursor,
		domain.EventDoubleClick:  (*Machine).finishPolygon,
	},
	{domain.ModePlacingCircle, false}: {
		domain.EventPrimaryClick: (*Machine).placeCenter,
	},
	{domain.ModePlacingCircle, true}: {
		domain.EventWheel:        (*Machine).resize,
		domain.EventPrimaryClick: (*Machine).finishCircle,
	},
	{domain.ModeDraggingRectangle, false}: {
		domain.EventPrimaryClick: (*Machine).anchorRectangle,
	},
	{domain.ModeDraggingRectangle, true}: {
		domain.EventPointerMove: (*Machine).dragRectangle,
		domain.EventDoubleClick: (*Machine).finishRectangle,
	},
}

// Machine governs mode transitions and applies input events to the session.
// It is the only writer of its Session. Not safe for concurrent use.
type Machine struct {
	session  *Session
	shapes   *Collection
	opts     Options
	logger   *slog.Logger
	watchers map[int]ModeChangeFunc
	nextW    int
}

// NewMachine creates an Idle machine committing into shapes.
func NewMachine(shapes *Collection, opts Options) *Machine {
	opts = opts.withDefaults()
	return &Machine{
		session:  NewSession(),
		shapes:   shapes,
		opts:     opts,
		logger:   opts.Logger,
		watchers: make(map[int]ModeChangeFunc),
	}
}

// Mode returns the current mode.
func (m *Machine) Mode() domain.Mode {
	return m.session.Mode()
}

// Snapshot returns a copy of the session state.
func (m *Machine) Snapshot() Snapshot {
	return m.session.Snapshot()
}

// Shapes returns the collection the machine commits into.
func (m *Machine) Shapes() *Collection {
	return m.shapes
}

// Options returns the effective settings.
func (m *Machine) Options() Options {
	return m.opts
}

// OnModeChange registers fn and returns a function that unregisters it.
func (m *Machine) OnModeChange(fn ModeChangeFunc) (cancel func()) {
	key := m.nextW
	m.nextW++
	m.watchers[key] = fn
	return func() { delete(m.watchers, key) }
}

// SelectMode starts drawing a shape of kind, discarding any unfinished input.
func (m *Machine) SelectMode(kind domain.ShapeKind) error {
	mode, ok := domain.ModeFor(kind)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownShapeKind, kind)
	}
	from := m.session.Mode()
	m.session.Begin(mode)
	m.transitioned(from, mode)
	return nil
}

// Cancel discards unfinished input and returns to Idle. Cancelling while Idle
// does nothing.
func (m *Machine) Cancel() {
	from := m.session.Mode()
	if from == domain.ModeIdle {
		return
	}
	m.session.Reset()
	m.transitioned(from, domain.ModeIdle)
}

// Handle applies one input event. Events without a transition in the current
// state are ignored. A *domain.ValidationError leaves the session untouched.
func (m *Machine) Handle(ev domain.InputEvent) (Outcome, error) {
	st := state{mode: m.session.Mode(), armed: m.session.Armed()}
	h, ok := transitions[st][ev.Kind]
	if !ok {
		return Outcome{}, nil
	}
	return h(m, ev)
}

// Finish commits the current input as if the user had made the closing
// gesture: polygons are validated as on double-click, circles keep their
// radius, rectangles close at the last tracked corner. Finishing with nothing
// to commit is refused with domain.ErrInvariantViolation.
func (m *Machine) Finish() (Outcome, error) {
	snap := m.session.Snapshot()
	switch {
	case snap.Mode == domain.ModeCollectingPolygon && len(snap.Vertices) > 0:
		return m.finishPolygon(domain.InputEvent{Kind: domain.EventDoubleClick})
	case snap.Mode == domain.ModePlacingCircle && snap.Center != nil:
		return m.commit(domain.Circle{Center: *snap.Center, RadiusMeters: snap.RadiusMeters})
	case snap.Mode == domain.ModeDraggingRectangle && snap.Anchor != nil:
		return m.commit(domain.Rectangle{Corner1: *snap.Anchor, Corner2: *snap.Opposite})
	}
	return Outcome{}, fmt.Errorf("%w: nothing to commit in mode %s", domain.ErrInvariantViolation, snap.Mode)
}

func (m *Machine) addVertex(ev domain.InputEvent) (Outcome, error) {
	if err := m.session.AppendVertex(ev.Coordinate); err != nil {
		return Outcome{}, err
	}
	return Outcome{Consumed: true}, nil
}

func (m *Machine) hintCursor(ev domain.InputEvent) (Outcome, error) {
	return Outcome{Consumed: m.session.SetCursorHint(ev.Coordinate)}, nil
}

func (m *Machine) finishPolygon(domain.InputEvent) (Outcome, error) {
	vertices := m.session.Snapshot().Vertices
	if n := domain.DistinctCoordinates(vertices); n < domain.MinPolygonVertices {
		err := &domain.ValidationError{
			Mode:   domain.ModeCollectingPolygon,
			Reason: fmt.Sprintf("a polygon needs at least %d distinct points, have %d", domain.MinPolygonVertices, n),
		}
		m.logger.Warn("polygon finalize rejected", "vertices", len(vertices), "distinct", n)
		return Outcome{Consumed: true}, err
	}
	ring := append(vertices, vertices[0])
	return m.commit(domain.Polygon{Ring: ring})
}

func (m *Machine) placeCenter(ev domain.InputEvent) (Outcome, error) {
	if err := m.session.PlaceCenter(ev.Coordinate, m.opts.DefaultRadiusMeters); err != nil {
		return Outcome{}, err
	}
	return Outcome{Consumed: true}, nil
}

func (m *Machine) resize(ev domain.InputEvent) (Outcome, error) {
	r, err := m.session.AdjustRadius(ev.WheelDelta, m.opts.RadiusStepMeters)
	if err != nil {
		return Outcome{}, err
	}
	m.logger.Debug("circle radius adjusted", "radius_m", r)
	return Outcome{Consumed: true}, nil
}

// finishCircle ignores where the second click landed.
func (m *Machine) finishCircle(domain.InputEvent) (Outcome, error) {
	snap := m.session.Snapshot()
	return m.commit(domain.Circle{Center: *snap.Center, RadiusMeters: snap.RadiusMeters})
}

func (m *Machine) anchorRectangle(ev domain.InputEvent) (Outcome, error) {
	if err := m.session.SetAnchor(ev.Coordinate); err != nil {
		return Outcome{}, err
	}
	return Outcome{Consumed: true}, nil
}

func (m *Machine) dragRectangle(ev domain.InputEvent) (Outcome, error) {
	if err := m.session.MoveOpposite(ev.Coordinate); err != nil {
		return Outcome{}, err
	}
	return Outcome{Consumed: true}, nil
}

func (m *Machine) finishRectangle(ev domain.InputEvent) (Outcome, error) {
	snap := m.session.Snapshot()
	return m.commit(domain.Rectangle{Corner1: *snap.Anchor, Corner2: ev.Coordinate})
}

// commit stores s and closes the session. Invalid shapes are refused and the
// session is left as it was.
func (m *Machine) commit(s domain.Shape) (Outcome, error) {
	if err := domain.ValidateShape(s); err != nil {
		m.logger.Error("commit refused", "kind", s.Kind(), "error", err)
		return Outcome{}, err
	}
	from := m.session.Mode()
	id := m.shapes.Commit(s)
	m.session.Reset()
	m.logger.Debug("shape committed", "id", id, "kind", s.Kind())
	m.transitioned(from, domain.ModeIdle)
	return Outcome{Consumed: true, ShapeID: id}, nil
}

func (m *Machine) transitioned(from, to domain.Mode) {
	m.logger.Debug("draw mode changed", "from", from, "to", to)
	last := m.nextW
	for k := 0; k < last; k++ {
		if fn, ok := m.watchers[k]; ok {
			fn(from, to)
		}
	}
}

// IsValidation reports whether err is a recoverable validation failure.
func IsValidation(err error) bool {
	var v *domain.ValidationError
	return errors.As(err, &v)
}
