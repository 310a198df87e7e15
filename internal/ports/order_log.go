package ports

import (
	"context"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// Port: local record of orders this system created.
type OrderLog interface {
	Record(ctx context.Context, order *domain.Order) error
	// Return the most recently created orders, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
}

// Port: a boundary for retrieving named delivery landmarks.
type DestinationRepository interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
}
