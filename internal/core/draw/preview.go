package draw

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/pkg/geospatial"
)

// Preview feature roles, stored in the "role" property.
const (
	RoleVertex    = "vertex"
	RoleLine      = "line"
	RoleClosing   = "closing"
	RoleCircle    = "circle"
	RoleLabel     = "label"
	RoleRectangle = "rectangle"
)

// Projector derives the transient geometry shown while drawing. Project is a
// pure function of the snapshot.
type Projector struct {
	circleSteps int
}

// NewProjector creates a projector; circleSteps <= 0 means the default.
func NewProjector(circleSteps int) *Projector {
	return &Projector{circleSteps: circleSteps}
}

// Project builds the preview FeatureCollection for snap. An Idle snapshot
// yields an empty collection.
func (p *Projector) Project(snap Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	switch snap.Mode {
	case domain.ModeCollectingPolygon:
		p.polygon(fc, snap)
	case domain.ModePlacingCircle:
		if snap.Center != nil {
			ring := geospatial.CircleToRing(snap.Center.Point(), snap.RadiusMeters, p.circleSteps)
			outline := feature(orb.Polygon{ring}, RoleCircle)
			outline.Properties["radius_m"] = snap.RadiusMeters
			fc.Append(outline)

			label := feature(snap.Center.Point(), RoleLabel)
			label.Properties["label"] = RadiusLabel(snap.RadiusMeters)
			fc.Append(label)
		}
	case domain.ModeDraggingRectangle:
		if snap.Anchor != nil {
			ring := geospatial.RectangleToRing(snap.Anchor.Point(), snap.Opposite.Point())
			fc.Append(feature(orb.Polygon{ring}, RoleRectangle))
		}
	}
	return fc
}

func (p *Projector) polygon(fc *geojson.FeatureCollection, snap Snapshot) {
	for i, v := range snap.Vertices {
		f := feature(v.Point(), RoleVertex)
		f.Properties["index"] = i
		fc.Append(f)
	}
	// A single vertex has no segment to show.
	if len(snap.Vertices) < 2 {
		return
	}

	line := make(orb.LineString, len(snap.Vertices))
	for i, v := range snap.Vertices {
		line[i] = v.Point()
	}
	fc.Append(feature(line, RoleLine))

	if snap.Cursor != nil {
		ring := make(orb.Ring, 0, len(line)+2)
		ring = append(ring, line...)
		ring = append(ring, snap.Cursor.Point(), line[0])
		fc.Append(feature(orb.Polygon{ring}, RoleClosing))
	}
}

func feature(g orb.Geometry, role string) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["role"] = role
	return f
}

// RadiusLabel formats a radius for the on-map label.
func RadiusLabel(meters float64) string {
	return fmt.Sprintf("%.0f m", meters)
}
