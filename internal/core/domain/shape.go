package domain

import (
	"fmt"
	"strings"
)

// MinCircleRadiusMeters is the smallest radius a circle can be drawn or committed with.
const MinCircleRadiusMeters = 20.0

// MinPolygonVertices is the fewest distinct vertices a stored polygon may have.
const MinPolygonVertices = 3

// DistinctCoordinates counts the distinct positions in cs.
func DistinctCoordinates(cs []Coordinate) int {
	seen := make(map[Coordinate]struct{}, len(cs))
	for _, c := range cs {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// ShapeKind names one of the drawable shape variants.
type ShapeKind string

const (
	ShapePolygon   ShapeKind = "polygon"
	ShapeCircle    ShapeKind = "circle"
	ShapeRectangle ShapeKind = "rectangle"
)

// ShapeKinds lists every kind in export order.
var ShapeKinds = []ShapeKind{ShapePolygon, ShapeCircle, ShapeRectangle}

// ParseShapeKind accepts a kind name case-insensitively.
func ParseShapeKind(s string) (ShapeKind, error) {
	k := ShapeKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case ShapePolygon, ShapeCircle, ShapeRectangle:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShapeKind, s)
}

// Shape is a committed, immutable drawing. It is one of Polygon, Circle or Rectangle.
type Shape interface {
	Kind() ShapeKind
	isShape()
}

// Polygon is a closed ring of at least four positions.
type Polygon struct {
	Ring []Coordinate `json:"ring"`
}

// Circle is a center and a radius in meters, tessellated on export.
type Circle struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_m"`
}

// Rectangle is spanned by two opposite corners, axis-aligned in lng/lat space.
type Rectangle struct {
	Corner1 Coordinate `json:"corner1"`
	Corner2 Coordinate `json:"corner2"`
}

func (Polygon) Kind() ShapeKind   { return ShapePolygon }
func (Circle) Kind() ShapeKind    { return ShapeCircle }
func (Rectangle) Kind() ShapeKind { return ShapeRectangle }

func (Polygon) isShape()   {}
func (Circle) isShape()    {}
func (Rectangle) isShape() {}

// ValidateShape checks the structural invariants of a shape before it is stored.
// Violations wrap ErrInvariantViolation.
func ValidateShape(s Shape) error {
	switch v := s.(type) {
	case Polygon:
		if len(v.Ring) < 4 {
			return fmt.Errorf("%w: polygon ring has %d positions, need at least 4", ErrInvariantViolation, len(v.Ring))
		}
		if v.Ring[0] != v.Ring[len(v.Ring)-1] {
			return fmt.Errorf("%w: polygon ring is not closed", ErrInvariantViolation)
		}
		for _, c := range v.Ring {
			if !c.Valid() {
				return fmt.Errorf("%w: polygon ring has a non-finite position", ErrInvariantViolation)
			}
		}
		if n := DistinctCoordinates(v.Ring[:len(v.Ring)-1]); n < MinPolygonVertices {
			return fmt.Errorf("%w: polygon ring has %d distinct vertices, need at least %d", ErrInvariantViolation, n, MinPolygonVertices)
		}
	case Circle:
		if !v.Center.Valid() {
			return fmt.Errorf("%w: circle center is not finite", ErrInvariantViolation)
		}
		if !(v.RadiusMeters >= MinCircleRadiusMeters) {
			return fmt.Errorf("%w: circle radius %.2f below %.0f m", ErrInvariantViolation, v.RadiusMeters, MinCircleRadiusMeters)
		}
	case Rectangle:
		if !v.Corner1.Valid() || !v.Corner2.Valid() {
			return fmt.Errorf("%w: rectangle corner is not finite", ErrInvariantViolation)
		}
	case nil:
		return fmt.Errorf("%w: nil shape", ErrInvariantViolation)
	default:
		return fmt.Errorf("%w: unsupported shape %T", ErrInvariantViolation, s)
	}
	return nil
}

// Shape event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ShapeEvent is published when the committed collection of a session changes.
type ShapeEvent struct {
	SessionID string    `json:"session_id"`
	Action    string    `json:"action"`
	IDs       []int     `json:"ids"`
	Kind      ShapeKind `json:"kind,omitempty"`
	Shape     Shape     `json:"shape,omitempty"`
}

// RemoveCommand asks a session to drop committed shapes (external trash action).
type RemoveCommand struct {
	SessionID string `json:"session"`
	IDs       []int  `json:"ids"`
}
