package ports

import (
	"context"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// Contract for retrieving a driving path between two coordinates.
type RouteProvider interface {
	// Return the path in travel order. ok is false when no route could be
	// obtained; callers fall back to a straight path.
	FetchRoute(ctx context.Context, origin, destination domain.Coordinates) (path []domain.Coordinates, ok bool)
}

// Persistent cache of previously fetched paths.
type RouteCache interface {
	// Return the cached path, or ok=false on a miss.
	Get(ctx context.Context, origin, destination domain.Coordinates) ([]domain.Coordinates, bool, error)
	Put(ctx context.Context, origin, destination domain.Coordinates, path []domain.Coordinates) error
}
