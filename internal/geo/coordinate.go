// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean earth radius in kilometers.
const EarthRadius = 6371.0

// Coordinate represents a geographic coordinate in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64

	CacheHit bool
}

// Distance returns the great-circle distance between a and b in kilometers. We are using the
// Haversine formula on a sphere with the mean earth radius.
func Distance(a, b Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding may push h marginally outside [0, 1] for (near) antipodal points
	h = math.Min(math.Max(h, 0), 1)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceTo returns the distance between c and other in kilometers.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return Distance(c, other)
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
