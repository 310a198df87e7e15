package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
)

type mapCache struct {
	m       map[string][]domain.Coordinates
	failGet bool
	puts    int
}

func key(a, b domain.Coordinates) string { return a.String() + b.String() }

func (c *mapCache) Get(ctx context.Context, a, b domain.Coordinates) ([]domain.Coordinates, bool, error) {
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	p, ok := c.m[key(a, b)]
	return p, ok, nil
}

func (c *mapCache) Put(ctx context.Context, a, b domain.Coordinates, path []domain.Coordinates) error {
	c.puts++
	c.m[key(a, b)] = path
	return nil
}

func TestCachedRouteProvider(t *testing.T) {
	route := []domain.Coordinates{hoanKiem, vanMieu}
	inner := NewMockRouteProvider(route, true)
	cache := &mapCache{m: map[string][]domain.Coordinates{}}
	p := NewCachedRouteProvider(inner, cache, zap.NewNop())

	got, ok := p.FetchRoute(context.Background(), hoanKiem, vanMieu)
	assert.True(t, ok)
	assert.Equal(t, route, got)
	assert.Equal(t, 1, inner.Calls())
	assert.Equal(t, 1, cache.puts)

	got, ok = p.FetchRoute(context.Background(), hoanKiem, vanMieu)
	assert.True(t, ok)
	assert.Equal(t, route, got)
	assert.Equal(t, 1, inner.Calls(), "second lookup should be served from cache")
}

func TestCachedRouteProviderIgnoresCacheErrors(t *testing.T) {
	inner := NewMockRouteProvider([]domain.Coordinates{hoanKiem, vanMieu}, true)
	cache := &mapCache{m: map[string][]domain.Coordinates{}, failGet: true}
	p := NewCachedRouteProvider(inner, cache, zap.NewNop())

	_, ok := p.FetchRoute(context.Background(), hoanKiem, vanMieu)
	assert.True(t, ok)
	assert.Equal(t, 1, inner.Calls())
}

func TestCachedRouteProviderDoesNotCacheMisses(t *testing.T) {
	inner := NewMockRouteProvider(nil, false)
	cache := &mapCache{m: map[string][]domain.Coordinates{}}
	p := NewCachedRouteProvider(inner, cache, zap.NewNop())

	_, ok := p.FetchRoute(context.Background(), hoanKiem, vanMieu)
	assert.False(t, ok)
	assert.Zero(t, cache.puts)
}
