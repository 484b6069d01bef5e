package http

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/mapdraw/internal/adapters/hostmap"
	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/draw"
	"github.com/samirrijal/mapdraw/internal/core/ports"
	"github.com/samirrijal/mapdraw/internal/core/usecases"
)

func newTestWorkspace(t *testing.T) *usecases.Workspace {
	t.Helper()
	svc := usecases.NewSketchService(usecases.SketchConfig{
		Draw:    draw.DefaultOptions(),
		NewHost: func() ports.DispatchingHost { return hostmap.NewBus() },
	})
	t.Cleanup(svc.Shutdown)
	w, err := svc.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func at(lng, lat float64) *domain.Coordinate {
	return &domain.Coordinate{Longitude: lng, Latitude: lat}
}

func TestHandleFrame_RectangleSession(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	frames := []wsFrame{
		{Type: frameSelectMode, Kind: "rectangle"},
		{Type: "primaryClick", Coordinate: at(1, 1)},
		{Type: "pointerMove", Coordinate: at(2, 2)},
	}
	for _, f := range frames {
		if _, err := handleFrame(ctx, w, f); err != nil {
			t.Fatalf("frame %+v: %v", f, err)
		}
	}
	if w.Mode() != domain.ModeDraggingRectangle {
		t.Fatalf("expected dragging_rectangle, got %s", w.Mode())
	}

	r, err := handleFrame(ctx, w, wsFrame{Type: frameFinish})
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Committed != 1 {
		t.Fatalf("expected commit on finish, got %+v", r)
	}
	if w.Mode() != domain.ModeIdle {
		t.Errorf("expected idle after finish, got %s", w.Mode())
	}
}

func TestHandleFrame_WarningAndCancel(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	_, _ = handleFrame(ctx, w, wsFrame{Type: frameSelectMode, Kind: "polygon"})
	_, _ = handleFrame(ctx, w, wsFrame{Type: "primaryClick", Coordinate: at(0, 0)})

	r, err := handleFrame(ctx, w, wsFrame{Type: "doubleClick", Coordinate: at(0, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if r.Warning == "" {
		t.Error("expected a validation warning")
	}

	if _, err := handleFrame(ctx, w, wsFrame{Type: frameCancel}); err != nil {
		t.Fatal(err)
	}
	if w.Mode() != domain.ModeIdle {
		t.Errorf("expected idle after cancel, got %s", w.Mode())
	}
}

func TestHandleFrame_Errors(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	if _, err := handleFrame(ctx, w, wsFrame{Type: frameSelectMode, Kind: "star"}); !errors.Is(err, domain.ErrUnknownShapeKind) {
		t.Errorf("expected ErrUnknownShapeKind, got %v", err)
	}
	if _, err := handleFrame(ctx, w, wsFrame{Type: "tap"}); !errors.Is(err, domain.ErrUnknownEventKind) {
		t.Errorf("expected ErrUnknownEventKind, got %v", err)
	}
	if _, err := handleFrame(ctx, w, wsFrame{Type: frameFinish}); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation finishing idle, got %v", err)
	}
}

func TestChangeSignal_DoesNotBlock(t *testing.T) {
	s := make(changeSignal, 1)
	s.ShapeCreated(1, nil)
	s.ShapesDeleted([]int{1})
	s.ShapeUpdated(2, nil)
	if len(s) != 1 {
		t.Errorf("expected one pending signal, got %d", len(s))
	}
}

func TestETagMatches(t *testing.T) {
	tests := []struct {
		header, etag string
		want         bool
	}{
		{"", `W/"abc"`, false},
		{`W/"abc"`, `W/"abc"`, true},
		{`"abc"`, `W/"abc"`, true},
		{`"x", W/"abc"`, `W/"abc"`, true},
		{"*", `W/"abc"`, true},
		{`"def"`, `W/"abc"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, tt.etag); got != tt.want {
			t.Errorf("etagMatches(%q, %q) = %v, want %v", tt.header, tt.etag, got, tt.want)
		}
	}
}
