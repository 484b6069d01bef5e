package geospatial

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultCircleSteps is the number of segments used to approximate a circle.
const DefaultCircleSteps = 64

// Meters per degree used by the local equirectangular projection.
const (
	metersPerDegreeLon = 111320.0 // at the equator, scaled by cos(lat)
	metersPerDegreeLat = 110540.0
)

// CircleToRing approximates a circle as a closed ring of steps+1 positions.
//
// Offsets are computed on a flat plane tangent to the center:
//
//	Δlng = r·cosθ / (111320·cos(lat))
//	Δlat = r·sinθ / 110540
//
// This is not a geodesic circle. The error grows with radius and latitude and is
// acceptable at city and neighborhood scale. At the poles cos(lat) is zero and
// longitudes become infinite.
//
// steps <= 0 selects DefaultCircleSteps.
func CircleToRing(center orb.Point, radiusMeters float64, steps int) orb.Ring {
	if steps <= 0 {
		steps = DefaultCircleSteps
	}

	cosLat := math.Cos(toRad(center.Lat()))
	ring := make(orb.Ring, steps+1)
	for i := 0; i < steps; i++ {
		theta := float64(i) / float64(steps) * 2 * math.Pi
		dx := radiusMeters * math.Cos(theta)
		dy := radiusMeters * math.Sin(theta)
		ring[i] = orb.Point{
			center.Lon() + dx/(metersPerDegreeLon*cosLat),
			center.Lat() + dy/metersPerDegreeLat,
		}
	}
	// θ = 2π lands on the first position up to rounding; reuse it exactly so
	// the ring is closed the way GeoJSON requires.
	ring[steps] = ring[0]
	return ring
}

// RectangleToRing returns the closed five-position ring of the lng/lat-aligned
// rectangle spanned by two opposite corners. The rectangle is not corrected for
// projection and looks skewed at high latitudes on a conformal map.
func RectangleToRing(c1, c2 orb.Point) orb.Ring {
	return orb.Ring{
		c1,
		{c2.Lon(), c1.Lat()},
		c2,
		{c1.Lon(), c2.Lat()},
		c1,
	}
}
