package domain

// MaxRoutePoints bounds the number of points stored with an order.
const MaxRoutePoints = 100

// Represents a single point on a delivery path.
// Order is the 0-based position of the point along the path; consumers
// render the path by sorting on it.
type RoutePoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Order int     `json:"order"`
}

// NewRoutePoints numbers the coordinates in path order.
func NewRoutePoints(coords []Coordinates) []RoutePoint {
	points := make([]RoutePoint, 0, len(coords))
	for i, c := range coords {
		points = append(points, RoutePoint{Lat: c.Lat, Lng: c.Lon, Order: i})
	}
	return points
}

// RouteCoordinates returns the points as coordinates, in slice order.
func RouteCoordinates(points []RoutePoint) []Coordinates {
	coords := make([]Coordinates, 0, len(points))
	for _, p := range points {
		coords = append(coords, Coordinates{Lat: p.Lat, Lon: p.Lng})
	}
	return coords
}
