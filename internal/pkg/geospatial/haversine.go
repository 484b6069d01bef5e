package geospatial

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b orb.Point) float64 {
	dLat := toRad(b.Lat() - a.Lat())
	dLon := toRad(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat()))*math.Cos(toRad(b.Lat()))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h a hair outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
