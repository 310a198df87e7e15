package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/db"
	"github.com/spad0604/robot-delivery/internal/platform/obs"
)

// SQLRouteCache is a SQL-backed cache for origin->destination routes,
// usable with both the sqlite and pgx drivers.
type SQLRouteCache struct {
	DB     *sql.DB
	driver string
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewSQLRouteCache expects the route_cache table to exist. Entries older
// than ttl are treated as missing; zero disables expiry.
func NewSQLRouteCache(conn *sql.DB, driver string, ttl time.Duration, log *zap.Logger) *SQLRouteCache {
	return &SQLRouteCache{DB: conn, driver: driver, ttl: ttl, log: log, now: time.Now}
}

func (s *SQLRouteCache) Get(ctx context.Context, origin, dest domain.Coordinates) (_ []domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, s.log, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	q := db.Rebind(s.driver, `
	SELECT points, created_at
	FROM route_cache
	WHERE route_key = ?;
	`)

	var (
		points  string
		created int64
	)
	err = s.DB.QueryRowContext(ctx, q, RouteKey(origin, dest)).Scan(&points, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(created, 0)) > s.ttl {
		return nil, false, nil
	}

	path, err := decodePath([]byte(points))
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: decode points: %w", err)
	}
	return path, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, origin, dest domain.Coordinates, path []domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.log, "route.cache.sql.Put")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if len(path) == 0 {
		return nil
	}

	b, err := encodePath(path)
	if err != nil {
		return fmt.Errorf("insert route cache: encode points: %w", err)
	}

	q := db.Rebind(s.driver, `
	INSERT INTO route_cache (route_key, points, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT (route_key) DO UPDATE
	SET points = EXCLUDED.points,
		created_at = EXCLUDED.created_at;
	`)
	if _, err := s.DB.ExecContext(ctx, q, RouteKey(origin, dest), string(b), s.now().Unix()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", RouteKey(origin, dest), err)
	}
	return nil
}
