package services

import (
	"math"
)

const earthRadiusMeters = 6371000.0

// DefaultCheckInRadiusMeters is the geofence radius a check-in must
// fall within to count as verified.
const DefaultCheckInRadiusMeters = 100.0

// HaversineMeters returns the great-circle distance between two
// coordinate pairs.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// WithinRadius reports whether the user is inside the venue geofence.
func WithinRadius(userLat, userLng, venueLat, venueLng, radiusMeters float64) (bool, float64) {
	d := HaversineMeters(userLat, userLng, venueLat, venueLng)
	return d <= radiusMeters, d
}
