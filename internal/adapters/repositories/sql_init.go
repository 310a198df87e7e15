package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/db"
)

// Initialize the database schema. The statements are valid for both the
// sqlite and pgx drivers.
func InitSchema(conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		name TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		seq INTEGER NOT NULL
	);
	`

	createOrderLogQuery := `
	CREATE TABLE IF NOT EXISTS order_log (
		order_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		destination_lat DOUBLE PRECISION NOT NULL,
		destination_lng DOUBLE PRECISION NOT NULL,
		receiver_name TEXT NOT NULL,
		receiver_age INTEGER NOT NULL,
		phone_number TEXT NOT NULL,
		goods TEXT NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		route_polyline TEXT NOT NULL,
		route_points TEXT
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		route_key TEXT PRIMARY KEY,
		points TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_order_log_created_at
	ON order_log(created_at);
	`

	statements := []string{
		createDestinationsQuery,
		createOrderLogQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// LoadDestinations reads and validates a landmark list from a JSON file.
func LoadDestinations(jsonPath string) ([]domain.Destination, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load destinations: read %q: %w", jsonPath, err)
	}

	var data []domain.Destination
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load destinations: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	rows := make([]domain.Destination, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("load destinations: item at index %d: name cannot be empty", i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("load destinations: item at index %d: duplicate name %q", i+1, name)
		}
		seen[name] = struct{}{}

		item.Name = name
		if err := item.Coordinates().Validate(); err != nil {
			return nil, fmt.Errorf("load destinations: item %q: %w", name, err)
		}
		rows = append(rows, item)
	}

	return rows, nil
}

// Populate the destinations table from a JSON file, replacing entries
// with the same name.
func SeedFromJSON(conn *sql.DB, driver, jsonPath string) (int, error) {
	rows, err := LoadDestinations(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed destinations: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("seed destinations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := db.Rebind(driver, `
	INSERT INTO destinations (name, lat, lng, seq)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE
	SET lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		seq = EXCLUDED.seq;
	`)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("seed destinations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range rows {
		if _, err := stmt.Exec(d.Name, d.Lat, d.Lng, i); err != nil {
			return 0, fmt.Errorf("seed destinations: insert name=%q: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed destinations: commit tx: %w", err)
	}

	return len(rows), nil
}
