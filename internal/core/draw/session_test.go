package draw_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/draw"
)

func TestSession_IdleHasEmptyBuffer(t *testing.T) {
	s := draw.NewSession()
	if s.Mode() != domain.ModeIdle {
		t.Fatalf("expected idle, got %s", s.Mode())
	}
	snap := s.Snapshot()
	if snap.Vertices != nil || snap.Center != nil || snap.Anchor != nil || snap.Cursor != nil {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestSession_BeginDiscardsPreviousBuffer(t *testing.T) {
	s := draw.NewSession()
	s.Begin(domain.ModeCollectingPolygon)
	_ = s.AppendVertex(coord(1, 1))
	_ = s.AppendVertex(coord(2, 2))

	s.Begin(domain.ModeCollectingPolygon)
	if n := len(s.Snapshot().Vertices); n != 0 {
		t.Errorf("expected fresh buffer, got %d vertices", n)
	}

	s.Begin(domain.ModePlacingCircle)
	s.Reset()
	if s.Mode() != domain.ModeIdle || s.Armed() {
		t.Errorf("expected idle unarmed session after reset")
	}
}

func TestSession_CursorHintNeedsTwoVertices(t *testing.T) {
	s := draw.NewSession()
	s.Begin(domain.ModeCollectingPolygon)

	_ = s.AppendVertex(coord(1, 1))
	if s.SetCursorHint(coord(5, 5)) {
		t.Error("cursor hint applied with one vertex")
	}
	_ = s.AppendVertex(coord(2, 1))
	if !s.SetCursorHint(coord(5, 5)) {
		t.Error("cursor hint not applied with two vertices")
	}
	if c := s.Snapshot().Cursor; c == nil || *c != coord(5, 5) {
		t.Errorf("unexpected cursor %v", c)
	}
}

func TestSession_WrongModeIsInvariantViolation(t *testing.T) {
	s := draw.NewSession()
	if err := s.AppendVertex(coord(0, 0)); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", err)
	}
	s.Begin(domain.ModePlacingCircle)
	if _, err := s.AdjustRadius(1, 20); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Errorf("expected invariant violation before center, got %v", err)
	}
	if err := s.PlaceCenter(coord(0, 0), 100); err != nil {
		t.Fatal(err)
	}
	if err := s.PlaceCenter(coord(1, 1), 100); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Errorf("expected invariant violation for second center, got %v", err)
	}
	if c := s.Snapshot().Center; *c != coord(0, 0) {
		t.Errorf("center changed after refused call: %v", c)
	}
}

func TestSession_RadiusClampedAndStepped(t *testing.T) {
	s := draw.NewSession()
	s.Begin(domain.ModePlacingCircle)
	_ = s.PlaceCenter(coord(127, 37.5), 100)

	// Pseudo-random but deterministic wheel sequence.
	deltas := []float64{1, -1, -1, -3, -0.5, -1, -1, -1, -1, 2, -1, 1, 1, -1, -1, -1, -1, 4}
	prev := 100.0
	for i, d := range deltas {
		r, err := s.AdjustRadius(d, 20)
		if err != nil {
			t.Fatal(err)
		}
		if r < domain.MinCircleRadiusMeters {
			t.Fatalf("step %d: radius %v below minimum", i, r)
		}
		want := prev + 20
		if d <= 0 {
			want = prev - 20
			if want < 20 {
				want = 20
			}
		}
		if r != want {
			t.Fatalf("step %d: expected %v, got %v", i, want, r)
		}
		prev = r
	}
}

func TestSession_SnapshotIsDetached(t *testing.T) {
	s := draw.NewSession()
	s.Begin(domain.ModeCollectingPolygon)
	_ = s.AppendVertex(coord(1, 1))

	snap := s.Snapshot()
	snap.Vertices[0] = coord(9, 9)

	if got := s.Snapshot().Vertices[0]; got != coord(1, 1) {
		t.Errorf("snapshot mutation leaked into session: %v", got)
	}
}

func TestSession_RectangleOppositeStartsAtAnchor(t *testing.T) {
	s := draw.NewSession()
	s.Begin(domain.ModeDraggingRectangle)
	if err := s.MoveOpposite(coord(1, 1)); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Errorf("expected invariant violation before anchor, got %v", err)
	}
	_ = s.SetAnchor(coord(127, 37.5))
	snap := s.Snapshot()
	if *snap.Anchor != coord(127, 37.5) || *snap.Opposite != coord(127, 37.5) {
		t.Errorf("unexpected corners %v %v", snap.Anchor, snap.Opposite)
	}
}
