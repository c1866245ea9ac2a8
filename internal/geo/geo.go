// Package geo holds the pure location and timing checks used during
// check-in verification. No I/O, no side effects.
package geo

import (
	"math"
	"time"

	dErrors "trustgate/pkg/domain-errors"
)

const earthRadiusKm = 6371.0

// Check-in window relative to event start.
const (
	WindowBefore = 30 * time.Minute
	WindowAfter  = 2 * time.Hour
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the pair is within coordinate ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Distance returns the great-circle distance between two coordinates in
// kilometers using the haversine formula.
func Distance(a, b Coordinates) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, dErrors.New(dErrors.CodeValidation, "coordinates out of range")
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c, nil
}

// InCheckInWindow reports whether ts falls inside [start-30m, start+2h],
// inclusive on both bounds.
func InCheckInWindow(start, ts time.Time) bool {
	open := start.Add(-WindowBefore)
	close := start.Add(WindowAfter)
	return !ts.Before(open) && !ts.After(close)
}
