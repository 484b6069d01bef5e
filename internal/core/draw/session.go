package draw

import (
	"fmt"
	"math"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

// buffer is the mode-specific, not yet committed input of a Session.
type buffer interface {
	mode() domain.Mode
}

type polygonBuffer struct {
	vertices []domain.Coordinate
	cursor   *domain.Coordinate
}

type circleBuffer struct {
	center *domain.Coordinate
	radius float64
}

type rectangleBuffer struct {
	anchor   *domain.Coordinate
	opposite domain.Coordinate
}

func (*polygonBuffer) mode() domain.Mode   { return domain.ModeCollectingPolygon }
func (*circleBuffer) mode() domain.Mode    { return domain.ModePlacingCircle }
func (*rectangleBuffer) mode() domain.Mode { return domain.ModeDraggingRectangle }

// Session is the single in-progress drawing. Its buffer is nil whenever the
// mode is Idle. Session is not safe for concurrent use.
type Session struct {
	buf buffer
}

// NewSession returns an Idle session.
func NewSession() *Session {
	return &Session{}
}

// Mode returns the current mode.
func (s *Session) Mode() domain.Mode {
	if s.buf == nil {
		return domain.ModeIdle
	}
	return s.buf.mode()
}

// Begin enters mode with a fresh buffer, discarding whatever was there.
func (s *Session) Begin(mode domain.Mode) {
	switch mode {
	case domain.ModeCollectingPolygon:
		s.buf = &polygonBuffer{}
	case domain.ModePlacingCircle:
		s.buf = &circleBuffer{}
	case domain.ModeDraggingRectangle:
		s.buf = &rectangleBuffer{}
	default:
		s.buf = nil
	}
}

// Reset discards the buffer and returns to Idle.
func (s *Session) Reset() {
	s.buf = nil
}

// Armed reports whether a circle center or rectangle anchor has been placed.
func (s *Session) Armed() bool {
	switch b := s.buf.(type) {
	case *circleBuffer:
		return b.center != nil
	case *rectangleBuffer:
		return b.anchor != nil
	}
	return false
}

func (s *Session) wrongMode(op string) error {
	return fmt.Errorf("%w: %s in mode %s", domain.ErrInvariantViolation, op, s.Mode())
}

// AppendVertex adds a polygon vertex. Duplicates are kept.
func (s *Session) AppendVertex(p domain.Coordinate) error {
	b, ok := s.buf.(*polygonBuffer)
	if !ok {
		return s.wrongMode("append vertex")
	}
	b.vertices = append(b.vertices, p)
	return nil
}

// SetCursorHint records the pointer position used to close the polygon preview.
// It only applies once two vertices exist and reports whether it did.
func (s *Session) SetCursorHint(p domain.Coordinate) bool {
	b, ok := s.buf.(*polygonBuffer)
	if !ok || len(b.vertices) < 2 {
		return false
	}
	b.cursor = &p
	return true
}

// PlaceCenter sets the circle center and its starting radius.
func (s *Session) PlaceCenter(p domain.Coordinate, radius float64) error {
	b, ok := s.buf.(*circleBuffer)
	if !ok {
		return s.wrongMode("place center")
	}
	if b.center != nil {
		return fmt.Errorf("%w: circle center already placed", domain.ErrInvariantViolation)
	}
	b.center = &p
	b.radius = math.Max(radius, domain.MinCircleRadiusMeters)
	return nil
}

// AdjustRadius grows the radius by step for a positive delta and shrinks it
// otherwise, never below domain.MinCircleRadiusMeters. It returns the new radius.
func (s *Session) AdjustRadius(delta, step float64) (float64, error) {
	b, ok := s.buf.(*circleBuffer)
	if !ok || b.center == nil {
		return 0, s.wrongMode("adjust radius")
	}
	if delta > 0 {
		b.radius += step
	} else {
		b.radius -= step
	}
	b.radius = math.Max(b.radius, domain.MinCircleRadiusMeters)
	return b.radius, nil
}

// SetAnchor fixes the first rectangle corner; the opposite corner starts there too.
func (s *Session) SetAnchor(p domain.Coordinate) error {
	b, ok := s.buf.(*rectangleBuffer)
	if !ok {
		return s.wrongMode("set anchor")
	}
	if b.anchor != nil {
		return fmt.Errorf("%w: rectangle anchor already set", domain.ErrInvariantViolation)
	}
	b.anchor = &p
	b.opposite = p
	return nil
}

// MoveOpposite tracks the rectangle corner under the pointer.
func (s *Session) MoveOpposite(p domain.Coordinate) error {
	b, ok := s.buf.(*rectangleBuffer)
	if !ok || b.anchor == nil {
		return s.wrongMode("move opposite corner")
	}
	b.opposite = p
	return nil
}

// Snapshot is a detached copy of session state. Mutating it does not affect
// the session.
type Snapshot struct {
	Mode         domain.Mode
	Vertices     []domain.Coordinate
	Cursor       *domain.Coordinate
	Center       *domain.Coordinate
	RadiusMeters float64
	Anchor       *domain.Coordinate
	Opposite     *domain.Coordinate
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{Mode: s.Mode()}
	switch b := s.buf.(type) {
	case *polygonBuffer:
		snap.Vertices = append([]domain.Coordinate(nil), b.vertices...)
		snap.Cursor = copyCoord(b.cursor)
	case *circleBuffer:
		snap.Center = copyCoord(b.center)
		snap.RadiusMeters = b.radius
	case *rectangleBuffer:
		if b.anchor != nil {
			snap.Anchor = copyCoord(b.anchor)
			snap.Opposite = copyCoord(&b.opposite)
		}
	}
	return snap
}

func copyCoord(c *domain.Coordinate) *domain.Coordinate {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
