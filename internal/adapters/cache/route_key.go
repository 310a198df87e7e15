package cache

import (
	"encoding/json"
	"fmt"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// RouteKey identifies an origin/destination pair. Coordinates are rounded
// to six decimals (about 0.1 m), so positions that differ only in float
// noise share a cache entry.
func RouteKey(origin, dest domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f;%.6f,%.6f", origin.Lat, origin.Lon, dest.Lat, dest.Lon)
}

// paths are stored as [[lat, lon], ...].
func encodePath(path []domain.Coordinates) ([]byte, error) {
	pairs := make([][2]float64, len(path))
	for i, c := range path {
		pairs[i] = [2]float64{c.Lat, c.Lon}
	}
	return json.Marshal(pairs)
}

func decodePath(b []byte) ([]domain.Coordinates, error) {
	var pairs [][2]float64
	if err := json.Unmarshal(b, &pairs); err != nil {
		return nil, err
	}
	path := make([]domain.Coordinates, len(pairs))
	for i, p := range pairs {
		path[i] = domain.Coordinates{Lat: p[0], Lon: p[1]}
	}
	return path, nil
}
