package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// SQL-backed implementation of the DestinationRepository port.
type SQLDestinationRepository struct{ DB *sql.DB }

func NewSQLDestinationRepository(conn *sql.DB) *SQLDestinationRepository {
	return &SQLDestinationRepository{DB: conn}
}

// Return all seeded landmarks in seed order.
func (s *SQLDestinationRepository) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if s.DB == nil {
		return nil, errors.New("sql destination repository: DB is nil")
	}

	query := `
	SELECT
		name,
		lat,
		lng
	FROM destinations
	ORDER BY seq, name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query destinations table: %w", err)
	}
	defer rows.Close()

	destinations := make([]domain.Destination, 0, 16)
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.Name, &d.Lat, &d.Lng); err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}
		destinations = append(destinations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return destinations, nil
}
