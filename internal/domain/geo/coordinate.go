// internal/domain/geo/coordinate.go
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 position in degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HanoiCenter is the coordinate used whenever nothing better is known
var HanoiCenter = Coordinate{Latitude: 21.0285, Longitude: 105.8542}

// Valid reports whether c is a usable coordinate
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// DistanceMeters returns the haversine great-circle distance between a and b
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Calculator measures distances from a fixed store location
type Calculator struct {
	store Coordinate
}

// NewCalculator creates a distance calculator anchored at store
func NewCalculator(store Coordinate) *Calculator {
	return &Calculator{store: store}
}

// Store returns the anchor coordinate
func (c *Calculator) Store() Coordinate {
	return c.store
}

// DistanceKm returns the distance in kilometres from the store to target
func (c *Calculator) DistanceKm(target Coordinate) float64 {
	return DistanceMeters(c.store, target) / 1000
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
