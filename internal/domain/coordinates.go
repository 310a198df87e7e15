package domain

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}

// Validate reports whether the coordinates lie on the globe.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return NewValidationError("invalid coordinates", ValidationDetail{
			Field:   "lat",
			Message: fmt.Sprintf("latitude %v out of range [-90, 90]", c.Lat),
		})
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return NewValidationError("invalid coordinates", ValidationDetail{
			Field:   "lon",
			Message: fmt.Sprintf("longitude %v out of range [-180, 180]", c.Lon),
		})
	}
	return nil
}

// HaversineMeters returns the great-circle distance between a and b.
func HaversineMeters(a, b Coordinates) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// BoundingBox is a rectangular latitude/longitude region.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// HanoiBounds covers central Hanoi, where the demo robot operates.
var HanoiBounds = BoundingBox{MinLat: 20.9, MaxLat: 21.1, MinLon: 105.7, MaxLon: 105.9}

// Clamp moves c onto the nearest point inside the box.
func (b BoundingBox) Clamp(c Coordinates) Coordinates {
	return Coordinates{
		Lat: math.Max(b.MinLat, math.Min(b.MaxLat, c.Lat)),
		Lon: math.Max(b.MinLon, math.Min(b.MaxLon, c.Lon)),
	}
}

func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

func (b BoundingBox) Validate() error {
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return NewValidationError("invalid bounding box", ValidationDetail{
			Field:   "bounds",
			Message: fmt.Sprintf("min must not exceed max: %+v", b),
		})
	}
	return nil
}
