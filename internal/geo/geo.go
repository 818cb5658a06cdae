// Package geo provides great-circle distance math over WGS84 coordinates.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	// EarthRadiusMeters is the mean radius of Earth in meters.
	EarthRadiusMeters = 6371000.0

	degreesToRadians = math.Pi / 180.0
)

// ErrInvalidCoordinates is returned by Validate for points outside the WGS84 range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceMeters returns the haversine distance between two points in meters.
// Inputs are not validated.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * degreesToRadians
	phi2 := lat2 * degreesToRadians
	deltaPhi := (lat2 - lat1) * degreesToRadians
	deltaLambda := (lon2 - lon1) * degreesToRadians

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Distance is DistanceMeters over Points.
func Distance(from, to Point) float64 {
	return DistanceMeters(from.Lat, from.Lon, to.Lat, to.Lon)
}

// WithinRadius reports whether point lies within radius meters of center.
// A point exactly on the boundary is inside.
func WithinRadius(point, center Point, radius float64) bool {
	return Distance(point, center) <= radius
}

// Validate checks that p is a finite coordinate inside [-90,90] x [-180,180].
func Validate(p Point) error {
	switch {
	case math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, p.Lat)
	case math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, p.Lon)
	}
	return nil
}
