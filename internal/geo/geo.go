package geo

import "math"

// earthRadiusM — mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// Coordinate is a pair of signed decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Valid reports whether the coordinate carries real location data.
// A zero latitude or longitude means "unset": no company in this system is
// registered on the equator or the prime meridian, so an exact 0 on either
// axis always comes from missing data, not from a real fix.
func (c Coordinate) Valid() bool {
	return c.Lat != 0 && c.Lon != 0
}

// HaversineMeters returns the great-circle distance between a and b in meters.
func HaversineMeters(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMeters is HaversineMeters rounded to the nearest whole meter,
// the unit stored on attendance records and sent over the wire.
func DistanceMeters(a, b Coordinate) int {
	return int(math.Round(HaversineMeters(a, b)))
}

// WithinRadius reports whether a distance is inside a geofence.
// The bound is inclusive: standing exactly on the radius counts as inside.
func WithinRadius(distanceM float64, radiusM int) bool {
	return distanceM <= float64(radiusM)
}
