package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a WGS 84 position in degrees. Ranges are not validated;
// the host map is expected to clamp.
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether both components are finite.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Longitude) && !math.IsInf(c.Longitude, 0) &&
		!math.IsNaN(c.Latitude) && !math.IsInf(c.Latitude, 0)
}

// Point converts to an orb point (lng, lat).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// CoordinateFromPoint converts an orb point back to a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Longitude: p.Lon(), Latitude: p.Lat()}
}
