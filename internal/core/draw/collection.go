package draw

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
	"github.com/samirrijal/mapdraw/internal/pkg/geospatial"
)

// Record is a committed shape with its display id.
type Record struct {
	ID    int
	Shape domain.Shape
}

// Collection is the append-only store of committed shapes. Removal and
// replacement exist for the host to call; the engine itself only appends.
type Collection struct {
	records     []Record
	lastID      int
	circleSteps int
	observers   map[int]ports.ShapeObserver
	nextObs     int
}

// NewCollection creates an empty collection. circleSteps controls the
// tessellation of circles on export (<= 0 means the default).
func NewCollection(circleSteps int) *Collection {
	return &Collection{
		circleSteps: circleSteps,
		observers:   make(map[int]ports.ShapeObserver),
	}
}

// Observe registers o for change notifications and returns a function that
// removes it again.
func (c *Collection) Observe(o ports.ShapeObserver) (cancel func()) {
	key := c.nextObs
	c.nextObs++
	c.observers[key] = o
	return func() { delete(c.observers, key) }
}

// Commit appends s and returns its id. ids start at 1 and are never reused.
// A shape failing domain.ValidateShape is not stored and Commit returns 0.
func (c *Collection) Commit(s domain.Shape) int {
	if domain.ValidateShape(s) != nil {
		return 0
	}
	c.lastID++
	id := c.lastID
	c.records = append(c.records, Record{ID: id, Shape: s})
	c.notify(func(o ports.ShapeObserver) { o.ShapeCreated(id, s) })
	return id
}

// Remove drops the shapes with the given ids and returns those that existed,
// in collection order.
func (c *Collection) Remove(ids ...int) []int {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	var removed []int
	kept := c.records[:0]
	for _, r := range c.records {
		if drop[r.ID] {
			removed = append(removed, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	// Clear the tail so dropped shapes are not pinned by the backing array.
	for i := len(kept); i < len(c.records); i++ {
		c.records[i] = Record{}
	}
	c.records = kept

	if len(removed) > 0 {
		c.notify(func(o ports.ShapeObserver) { o.ShapesDeleted(removed) })
	}
	return removed
}

// Replace swaps the shape stored under id, keeping its position.
func (c *Collection) Replace(id int, s domain.Shape) error {
	if err := domain.ValidateShape(s); err != nil {
		return err
	}
	for i := range c.records {
		if c.records[i].ID == id {
			c.records[i].Shape = s
			c.notify(func(o ports.ShapeObserver) { o.ShapeUpdated(id, s) })
			return nil
		}
	}
	return fmt.Errorf("%w: %d", domain.ErrShapeNotFound, id)
}

// Get returns the shape stored under id.
func (c *Collection) Get(id int) (domain.Shape, bool) {
	for _, r := range c.records {
		if r.ID == id {
			return r.Shape, true
		}
	}
	return nil, false
}

// Len returns the number of committed shapes.
func (c *Collection) Len() int {
	return len(c.records)
}

// Records returns the committed shapes of the given kinds in commit order.
// No kinds means every kind.
func (c *Collection) Records(kinds ...domain.ShapeKind) []Record {
	match := kindFilter(kinds)
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if match(r.Shape.Kind()) {
			out = append(out, r)
		}
	}
	return out
}

// IDs returns the ids of the committed shapes of the given kinds.
func (c *Collection) IDs(kinds ...domain.ShapeKind) []int {
	recs := c.Records(kinds...)
	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}

// FeatureCollection projects the committed shapes of the given kinds into
// GeoJSON. It is rebuilt from scratch on every call.
func (c *Collection) FeatureCollection(kinds ...domain.ShapeKind) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	var bound orb.Bound
	for i, r := range c.Records(kinds...) {
		ring := Ring(r.Shape, c.circleSteps)
		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["kind"] = string(r.Shape.Kind())
		if circle, ok := r.Shape.(domain.Circle); ok {
			f.Properties["radius_m"] = circle.RadiusMeters
			f.Properties["center"] = []float64{circle.Center.Longitude, circle.Center.Latitude}
		}
		fc.Append(f)

		if i == 0 {
			bound = ring.Bound()
		} else {
			bound = bound.Union(ring.Bound())
		}
	}
	if len(fc.Features) > 0 {
		fc.BBox = geojson.NewBBox(bound)
	}
	return fc
}

// Ring returns the closed outer ring of a shape. Circles are tessellated with
// the given number of steps.
func Ring(s domain.Shape, circleSteps int) orb.Ring {
	switch v := s.(type) {
	case domain.Polygon:
		ring := make(orb.Ring, len(v.Ring))
		for i, p := range v.Ring {
			ring[i] = p.Point()
		}
		return ring
	case domain.Circle:
		return geospatial.CircleToRing(v.Center.Point(), v.RadiusMeters, circleSteps)
	case domain.Rectangle:
		return geospatial.RectangleToRing(v.Corner1.Point(), v.Corner2.Point())
	}
	return nil
}

// notify calls fn for each observer in registration order. Observers removed
// by an earlier callback are skipped.
func (c *Collection) notify(fn func(ports.ShapeObserver)) {
	last := c.nextObs
	for k := 0; k < last; k++ {
		if o, ok := c.observers[k]; ok {
			fn(o)
		}
	}
}

func kindFilter(kinds []domain.ShapeKind) func(domain.ShapeKind) bool {
	if len(kinds) == 0 {
		return func(domain.ShapeKind) bool { return true }
	}
	set := make(map[domain.ShapeKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(k domain.ShapeKind) bool { return set[k] }
}
