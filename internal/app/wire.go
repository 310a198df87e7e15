// Package app assembles the adapters selected by configuration into the
// services the command line tools and the HTTP server run.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/adapters/cache"
	"github.com/spad0604/robot-delivery/internal/adapters/events"
	"github.com/spad0604/robot-delivery/internal/adapters/repositories"
	"github.com/spad0604/robot-delivery/internal/adapters/routing"
	"github.com/spad0604/robot-delivery/internal/adapters/storage"
	"github.com/spad0604/robot-delivery/internal/adapters/store"
	"github.com/spad0604/robot-delivery/internal/config"
	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/db"
	"github.com/spad0604/robot-delivery/internal/platform/logger"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
	"github.com/spad0604/robot-delivery/internal/ports"
	"github.com/spad0604/robot-delivery/internal/services"
)

// App holds the shared infrastructure of one process. Optional
// components (database, Redis, Kafka, object storage) are connected on
// first use and skipped with a warning when unavailable.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	store   ports.OrderStore
	db      *sql.DB
	dbTried bool
	closers []func() error
}

// New loads configuration and builds the logger. v may carry flag bindings.
func New(v *viper.Viper) (*App, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	zap.ReplaceGlobals(log)

	return NewWithLogger(cfg, log), nil
}

func NewWithLogger(cfg *config.Config, log *zap.Logger) *App {
	reg := metrics.NewRegistry()
	return &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  metrics.New(reg),
	}
}

// Close releases every connection opened by the App, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

// Store returns the order store selected by STORE_DRIVER.
func (a *App) Store() (ports.OrderStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.Config.Store.Driver {
	case "memory":
		a.Log.Warn("using in-memory order store; data is lost on exit")
		a.store = store.NewMemoryStore()
	default:
		fs, err := store.NewFirebaseStore(a.Config.Store.FirebaseURL, a.Config.Store.Timeout, a.Log)
		if err != nil {
			return nil, err
		}
		a.Log.Info("connected order store", zap.String("url", fs.BaseURL()))
		a.store = fs
	}
	return a.store, nil
}

// OrderStream subscribes to the store's live updates. Only the Firebase
// store has a change feed.
func (a *App) OrderStream() (*store.OrderStream, error) {
	s, err := a.Store()
	if err != nil {
		return nil, err
	}
	if a.Config.Store.Driver == "memory" {
		return nil, errors.New("order stream: the memory store has no change feed")
	}
	return store.NewOrderStream(
		a.Config.Store.FirebaseURL,
		s,
		a.Config.Store.StreamTimeout,
		a.Config.Store.StreamRetryDelay,
		a.Log,
		a.Metrics,
	), nil
}

// DB opens the SQL database and initializes the schema. It returns nil
// when the database is unavailable; callers treat SQL features as
// optional.
func (a *App) DB() *sql.DB {
	if a.dbTried {
		return a.db
	}
	a.dbTried = true

	conn, err := db.Open(a.Config.Database.Driver, a.Config.Database.URL)
	if err != nil {
		a.Log.Warn("database unavailable; order log and sql route cache disabled", zap.Error(err))
		return nil
	}
	if err := repositories.InitSchema(conn); err != nil {
		a.Log.Warn("database schema init failed", zap.Error(err))
		_ = conn.Close()
		return nil
	}

	a.db = conn
	a.closers = append(a.closers, conn.Close)
	return a.db
}

// RouteCache prefers Redis when REDIS_ADDR is set and reachable, then the
// SQL database. It returns nil when neither is available.
func (a *App) RouteCache(ctx context.Context) ports.RouteCache {
	if addr := a.Config.Redis.Addr; addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			a.closers = append(a.closers, client.Close)
			a.Log.Info("using redis route cache", zap.String("addr", addr))
			return cache.NewRedisRouteCache(client, a.Config.Redis.RouteTTL, a.Log)
		}
		_ = client.Close()
		a.Log.Warn("redis unavailable, trying sql route cache", zap.String("addr", addr), zap.Error(err))
	}

	if conn := a.DB(); conn != nil {
		return cache.NewSQLRouteCache(conn, a.Config.Database.Driver, a.Config.Redis.RouteTTL, a.Log)
	}
	return nil
}

// RouteProvider builds the OSRM client, wrapped in a cache when one is
// available.
func (a *App) RouteProvider(ctx context.Context) (ports.RouteProvider, error) {
	osrm, err := routing.NewOSRMRouteProvider(
		a.Config.Routing.Endpoints,
		a.Config.Routing.Timeout,
		a.Log,
		routing.WithMetrics(a.Metrics),
	)
	if err != nil {
		return nil, err
	}

	if c := a.RouteCache(ctx); c != nil {
		return routing.NewCachedRouteProvider(osrm, c, a.Log), nil
	}
	return osrm, nil
}

// OrderLog returns the SQL order history, or nil without a database.
func (a *App) OrderLog() ports.OrderLog {
	conn := a.DB()
	if conn == nil {
		return nil
	}
	return repositories.NewSQLOrderLogRepository(conn, a.Config.Database.Driver)
}

// Events returns the Kafka publisher when KAFKA_BROKERS is set.
func (a *App) Events() ports.OrderEventPublisher {
	if len(a.Config.Kafka.Brokers) == 0 {
		return nil
	}
	p, err := events.NewKafkaOrderPublisher(a.Config.Kafka.Brokers, a.Config.Kafka.Topic, a.Log)
	if err != nil {
		a.Log.Warn("order events disabled", zap.Error(err))
		return nil
	}
	a.closers = append(a.closers, p.Close)
	a.Log.Info("publishing order events",
		zap.Strings("brokers", a.Config.Kafka.Brokers), zap.String("topic", a.Config.Kafka.Topic))
	return p
}

// Archive returns the S3 route archive when MINIO_ENDPOINT is set.
func (a *App) Archive() ports.RouteArchive {
	if a.Config.Minio.Endpoint == "" {
		return nil
	}
	archive, err := storage.NewS3RouteArchive(storage.S3Options{
		Endpoint:  a.Config.Minio.Endpoint,
		AccessKey: a.Config.Minio.AccessKey,
		SecretKey: a.Config.Minio.SecretKey,
		UseSSL:    a.Config.Minio.UseSSL,
		Bucket:    a.Config.Minio.Bucket,
	}, a.Log)
	if err != nil {
		a.Log.Warn("route archive disabled", zap.Error(err))
		return nil
	}
	return archive
}

// Destinations reads the seeded landmarks from the database, falling back
// to the seed file.
func (a *App) Destinations(ctx context.Context) ([]domain.Destination, error) {
	if conn := a.DB(); conn != nil {
		list, err := repositories.NewSQLDestinationRepository(conn).ListDestinations(ctx)
		if err == nil && len(list) > 0 {
			return list, nil
		}
		if err != nil {
			a.Log.Warn("list destinations failed, reading seed file", zap.Error(err))
		}
	}
	return repositories.LoadDestinations(a.Config.Database.SeedPath)
}

// OrderCreator wires the order pipeline with every optional side effect
// that is configured.
func (a *App) OrderCreator(ctx context.Context) (*services.OrderCreator, error) {
	s, err := a.Store()
	if err != nil {
		return nil, err
	}
	routes, err := a.RouteProvider(ctx)
	if err != nil {
		return nil, err
	}

	c := &services.OrderCreator{
		Store:          s,
		Routes:         routes,
		Receivers:      services.NewReceiverGenerator(services.DefaultReceiverTables(), nil),
		Log:            a.Log,
		Metrics:        a.Metrics,
		MaxRoutePoints: a.Config.Routing.MaxRoutePoints,
		OrderLog:       a.OrderLog(),
		Events:         a.Events(),
		Archive:        a.Archive(),
	}
	return c, nil
}

// RobotSimulator builds the position updater from the walk settings.
func (a *App) RobotSimulator() (*services.RobotSimulator, error) {
	s, err := a.Store()
	if err != nil {
		return nil, err
	}

	w := a.Config.Walk
	sim := &services.RobotSimulator{
		Store:    s,
		Walker:   services.NewRandomWalker(w.MaxDistanceM, w.Bounds, nil),
		Interval: w.Interval,
		Log:      a.Log,
		Metrics:  a.Metrics,
		Default:  domain.Coordinates{Lat: w.DefaultLat, Lon: w.DefaultLon},
	}
	if w.InitialDefined {
		sim.Initial = &domain.Coordinates{Lat: w.InitialLat, Lon: w.InitialLon}
	}
	return sim, nil
}

// ServeMetrics exposes /metrics on METRICS_ADDR until ctx is done. It is a
// no-op when the address is empty.
func (a *App) ServeMetrics(ctx context.Context) {
	addr := a.Config.Server.MetricsAddr
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.Registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		a.Log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}
