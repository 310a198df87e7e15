package ports

import (
	"context"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// Publishes notifications about orders to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// Stores a copy of an order's route outside the realtime store.
type RouteArchive interface {
	ArchiveRoute(ctx context.Context, order *domain.Order) (string, error)
}
