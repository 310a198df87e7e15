package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spad0604/robot-delivery/internal/domain"
)

var errWritesDisabled = errors.New("writes disabled")

// MemoryStore is an in-process OrderStore, used for offline runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	robot  *domain.RobotPosition
	orders map[string]domain.Order

	// FailWrites makes every write return an error.
	FailWrites bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]domain.Order)}
}

func (m *MemoryStore) GetRobotPosition(ctx context.Context) (*domain.RobotPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.robot == nil {
		return nil, nil
	}
	pos := *m.robot
	return &pos, nil
}

func (m *MemoryStore) SetRobotPosition(ctx context.Context, pos domain.RobotPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return &StoreError{Op: "write", Path: robotPath, Err: errWritesDisabled}
	}
	m.robot = &pos
	return nil
}

func (m *MemoryStore) CreateOrder(ctx context.Context, order *domain.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return "", &StoreError{Op: "write", Path: ordersPath, Err: errWritesDisabled}
	}

	id := "-" + uuid.NewString()
	o := *order
	o.ID = id
	o.RoutePoints = append([]domain.RoutePoint(nil), order.RoutePoints...)
	m.orders[id] = o
	return id, nil
}

func (m *MemoryStore) ListOrders(ctx context.Context) (map[string]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*domain.Order, len(m.orders))
	for id, o := range m.orders {
		o := o
		out[id] = &o
	}
	return out, nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if err := domain.ValidateOrderID(id); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}
