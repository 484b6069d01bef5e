package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestValidateShape(t *testing.T) {
	closed := []Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	tests := []struct {
		name  string
		shape Shape
		ok    bool
	}{
		{"closed polygon", Polygon{Ring: closed}, true},
		{"short ring", Polygon{Ring: closed[:3]}, false},
		{"open ring", Polygon{Ring: []Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}, false},
		{"one distinct vertex", Polygon{Ring: []Coordinate{{5, 5}, {5, 5}, {5, 5}, {5, 5}}}, false},
		{"two distinct vertices", Polygon{Ring: []Coordinate{{0, 0}, {1, 0}, {1, 0}, {0, 0}}}, false},
		{"repeated vertex", Polygon{Ring: []Coordinate{{0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 0}}}, true},
		{"non-finite vertex", Polygon{Ring: []Coordinate{{0, 0}, {math.NaN(), 0}, {1, 1}, {0, 0}}}, false},
		{"circle", Circle{Center: Coordinate{1, 1}, RadiusMeters: 20}, true},
		{"small circle", Circle{Center: Coordinate{1, 1}, RadiusMeters: 19.9}, false},
		{"NaN radius", Circle{Center: Coordinate{1, 1}, RadiusMeters: math.NaN()}, false},
		{"rectangle", Rectangle{Corner1: Coordinate{0, 0}, Corner2: Coordinate{1, 1}}, true},
		{"infinite corner", Rectangle{Corner1: Coordinate{0, math.Inf(1)}}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShape(tt.shape)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("expected invariant violation, got %v", err)
			}
		})
	}
}

func TestParseKinds(t *testing.T) {
	if k, err := ParseShapeKind(" Circle "); err != nil || k != ShapeCircle {
		t.Errorf("ParseShapeKind: %v %v", k, err)
	}
	if _, err := ParseShapeKind("hexagon"); !errors.Is(err, ErrUnknownShapeKind) {
		t.Errorf("expected ErrUnknownShapeKind, got %v", err)
	}
	if k, err := ParseEventKind("doubleClick"); err != nil || k != EventDoubleClick {
		t.Errorf("ParseEventKind: %v %v", k, err)
	}
	if _, err := ParseEventKind("tap"); !errors.Is(err, ErrUnknownEventKind) {
		t.Errorf("expected ErrUnknownEventKind, got %v", err)
	}
}

func TestModeJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Mode{"mode": ModePlacingCircle})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"mode":"placing_circle"}` {
		t.Errorf("unexpected JSON %s", data)
	}
	for _, k := range ShapeKinds {
		if m, ok := ModeFor(k); !ok || m == ModeIdle {
			t.Errorf("no drawing mode for %s", k)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Mode: ModeCollectingPolygon, Reason: "need 3 points"}
	if err.Error() != "collecting_polygon: need 3 points" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCoordinatePointRoundTrip(t *testing.T) {
	c := Coordinate{Longitude: 127, Latitude: 37.5}
	if got := CoordinateFromPoint(c.Point()); got != c {
		t.Errorf("got %v", got)
	}
}
