package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/db"
)

// SQLOrderLogRepository keeps a local history of the orders this process
// created. The route is stored twice. route_points holds the exact JSON
// points and is what ListRecent reads. route_polyline (precision 1e5) is
// written for outside consumers such as map tooling and reporting queries
// that read order_log directly; ListRecent only decodes it for rows that
// other writers inserted without route_points.
type SQLOrderLogRepository struct {
	DB     *sql.DB
	driver string
}

func NewSQLOrderLogRepository(conn *sql.DB, driver string) *SQLOrderLogRepository {
	return &SQLOrderLogRepository{DB: conn, driver: driver}
}

func (s *SQLOrderLogRepository) Record(ctx context.Context, order *domain.Order) error {
	if s.DB == nil {
		return errors.New("sql order log: DB is nil")
	}
	if order == nil || order.ID == "" {
		return errors.New("record order: order has no id")
	}

	points, err := json.Marshal(order.RoutePoints)
	if err != nil {
		return fmt.Errorf("record order %s: encode route points: %w", order.ID, err)
	}

	query := db.Rebind(s.driver, `
	INSERT INTO order_log (
		order_id, created_at, destination_lat, destination_lng,
		receiver_name, receiver_age, phone_number, goods, weight,
		status, route_polyline, route_points
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (order_id) DO UPDATE
	SET status = EXCLUDED.status;
	`)
	_, err = s.DB.ExecContext(ctx, query,
		order.ID, order.CreatedAt, order.DestinationLat, order.DestinationLng,
		order.ReceiverName, order.ReceiverAge, order.PhoneNumber, order.Goods, order.Weight,
		string(order.Status), EncodeRoute(order.RoutePoints), string(points),
	)
	if err != nil {
		return fmt.Errorf("record order %s: insert order_log: %w", order.ID, err)
	}
	return nil
}

// ListRecent returns up to limit logged orders, newest first.
func (s *SQLOrderLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	if s.DB == nil {
		return nil, errors.New("sql order log: DB is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	query := db.Rebind(s.driver, `
	SELECT
		order_id, created_at, destination_lat, destination_lng,
		receiver_name, receiver_age, phone_number, goods, weight,
		status, route_polyline, route_points
	FROM order_log
	ORDER BY created_at DESC, order_id
	LIMIT ?;
	`)
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list order log: query order_log table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	for rows.Next() {
		var (
			o        domain.Order
			status   string
			encoded  string
			rawPoint sql.NullString
		)
		err := rows.Scan(
			&o.ID, &o.CreatedAt, &o.DestinationLat, &o.DestinationLng,
			&o.ReceiverName, &o.ReceiverAge, &o.PhoneNumber, &o.Goods, &o.Weight,
			&status, &encoded, &rawPoint,
		)
		if err != nil {
			return nil, fmt.Errorf("list order log: scan row: %w", err)
		}
		o.Status = domain.OrderStatus(status)

		if rawPoint.Valid && rawPoint.String != "" {
			if err := json.Unmarshal([]byte(rawPoint.String), &o.RoutePoints); err != nil {
				return nil, fmt.Errorf("list order log: order %s: decode route points: %w", o.ID, err)
			}
		} else {
			pts, err := DecodeRoute(encoded)
			if err != nil {
				return nil, fmt.Errorf("list order log: order %s: %w", o.ID, err)
			}
			o.RoutePoints = pts
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order log: row iteration: %w", err)
	}

	return orders, nil
}

// EncodeRoute renders route points as a Google encoded polyline
// (precision 1e5).
func EncodeRoute(points []domain.RoutePoint) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

func DecodeRoute(encoded string) ([]domain.RoutePoint, error) {
	if encoded == "" {
		return []domain.RoutePoint{}, nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode route polyline: %w", err)
	}

	path := make([]domain.Coordinates, len(coords))
	for i, c := range coords {
		path[i] = domain.Coordinates{Lat: c[0], Lon: c[1]}
	}
	return domain.NewRoutePoints(path), nil
}
