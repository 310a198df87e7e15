package routing

import (
	"context"
	"sync"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// MockRouteProvider returns a fixed path (or no route) and records calls.
type MockRouteProvider struct {
	mu    sync.Mutex
	path  []domain.Coordinates
	ok    bool
	calls int
}

func NewMockRouteProvider(path []domain.Coordinates, ok bool) *MockRouteProvider {
	return &MockRouteProvider{path: path, ok: ok}
}

func (p *MockRouteProvider) FetchRoute(ctx context.Context, origin, destination domain.Coordinates) ([]domain.Coordinates, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if !p.ok {
		return nil, false
	}
	out := make([]domain.Coordinates, len(p.path))
	copy(out, p.path)
	return out, true
}

func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
