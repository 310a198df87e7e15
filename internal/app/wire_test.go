package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/adapters/cache"
	"github.com/spad0604/robot-delivery/internal/adapters/routing"
	"github.com/spad0604/robot-delivery/internal/adapters/store"
	"github.com/spad0604/robot-delivery/internal/config"
	"github.com/spad0604/robot-delivery/internal/domain"
)

func testApp(t *testing.T, set map[string]any) *App {
	t.Helper()

	v := viper.New()
	v.Set("STORE_DRIVER", "memory")
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("DATABASE_URL", ":memory:")
	v.Set("SEED_PATH", "../../data/seeds/destinations.json")
	v.Set("REDIS_ADDR", "")
	v.Set("KAFKA_BROKERS", "")
	v.Set("MINIO_ENDPOINT", "")
	v.Set("METRICS_ADDR", "")
	for k, val := range set {
		v.Set(k, val)
	}

	cfg, err := config.Load(v)
	require.NoError(t, err)

	a := NewWithLogger(cfg, zap.NewNop())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestStoreSelection(t *testing.T) {
	a := testApp(t, nil)
	s, err := a.Store()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	again, _ := a.Store()
	assert.Same(t, s, again)

	_, err = a.OrderStream()
	assert.Error(t, err)

	fb := testApp(t, map[string]any{"STORE_DRIVER": "firebase", "FIREBASE_URL": "http://127.0.0.1:1"})
	s, err = fb.Store()
	require.NoError(t, err)
	assert.IsType(t, &store.FirebaseStore{}, s)

	stream, err := fb.OrderStream()
	require.NoError(t, err)
	assert.NotNil(t, stream)
}

func TestRouteCacheSelection(t *testing.T) {
	ctx := context.Background()

	a := testApp(t, nil)
	assert.IsType(t, &cache.SQLRouteCache{}, a.RouteCache(ctx))

	mr := miniredis.RunT(t)
	r := testApp(t, map[string]any{"REDIS_ADDR": mr.Addr()})
	assert.IsType(t, &cache.RedisRouteCache{}, r.RouteCache(ctx))

	provider, err := r.RouteProvider(ctx)
	require.NoError(t, err)
	assert.IsType(t, &routing.CachedRouteProvider{}, provider)
}

func TestDatabaseUnavailable(t *testing.T) {
	a := testApp(t, map[string]any{"DATABASE_DRIVER": "mysql"})
	assert.Nil(t, a.DB())
	assert.Nil(t, a.OrderLog())
	assert.Nil(t, a.RouteCache(context.Background()))

	// Destinations still come from the seed file.
	dests, err := a.Destinations(context.Background())
	require.NoError(t, err)
	assert.Len(t, dests, 15)
}

func TestOrderCreatorWiring(t *testing.T) {
	a := testApp(t, nil)

	c, err := a.OrderCreator(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c.OrderLog)
	assert.Nil(t, c.Events)
	assert.Nil(t, c.Archive)
	assert.Equal(t, domain.MaxRoutePoints, c.MaxRoutePoints)

	k := testApp(t, map[string]any{
		"KAFKA_BROKERS":    "localhost:9092",
		"MINIO_ENDPOINT":   "localhost:9000",
		"MINIO_ACCESS_KEY": "minio",
		"MINIO_SECRET_KEY": "minio123",
	})
	c, err = k.OrderCreator(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c.Events)
	assert.NotNil(t, c.Archive)
}

func TestRobotSimulatorWiring(t *testing.T) {
	a := testApp(t, map[string]any{
		"WALK_INTERVAL":    "250ms",
		"WALK_INITIAL_LAT": 21.03,
		"WALK_INITIAL_LON": 105.84,
	})

	sim, err := a.RobotSimulator()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, sim.Interval)
	require.NotNil(t, sim.Initial)
	assert.Equal(t, domain.Coordinates{Lat: 21.03, Lon: 105.84}, *sim.Initial)
	assert.Equal(t, domain.Coordinates{Lat: 21.0285, Lon: 105.8542}, sim.Default)
}
