package routing

import (
	"context"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/ports"
)

// CachedRouteProvider checks a persistent cache before delegating to the
// wrapped provider and stores every route it finds. Cache errors are
// logged and otherwise ignored.
type CachedRouteProvider struct {
	inner ports.RouteProvider
	cache ports.RouteCache
	log   *zap.Logger
}

func NewCachedRouteProvider(inner ports.RouteProvider, cache ports.RouteCache, log *zap.Logger) *CachedRouteProvider {
	return &CachedRouteProvider{inner: inner, cache: cache, log: log}
}

func (c *CachedRouteProvider) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) ([]domain.Coordinates, bool) {
	path, hit, err := c.cache.Get(ctx, origin, destination)
	switch {
	case err != nil:
		c.log.Warn("route cache read failed", zap.Error(err))
	case hit && len(path) > 0:
		c.log.Info("route cache hit", zap.Int("points", len(path)))
		return path, true
	}

	path, ok := c.inner.FetchRoute(ctx, origin, destination)
	if !ok {
		return nil, false
	}

	if err := c.cache.Put(ctx, origin, destination, path); err != nil {
		c.log.Warn("route cache write failed", zap.Error(err))
	}
	return path, true
}
