package ports

import (
	"context"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// Contract for reading and writing order and robot records in the
// remote realtime store. "No data" is absence, not an error: reads return
// a nil value (or an empty map) with a nil error.
type OrderStore interface {
	// Return the robot's last recorded position, or nil when none is stored.
	GetRobotPosition(ctx context.Context) (*domain.RobotPosition, error)
	// Overwrite the robot's position.
	SetRobotPosition(ctx context.Context, pos domain.RobotPosition) error
	// Persist a new order and return the identifier the store generated.
	CreateOrder(ctx context.Context, order *domain.Order) (string, error)
	// Return all orders keyed by identifier, with IDs filled in.
	ListOrders(ctx context.Context) (map[string]*domain.Order, error)
	// Return a single order, or nil when it does not exist.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}
