// Package store persists operator setpoint overrides in SQLite so they
// survive restarts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS setpoint_overrides (
	name       TEXT PRIMARY KEY,
	value      REAL NOT NULL,
	updated_at TEXT NOT NULL
);`

// SetpointStore reads and writes setpoint overrides.
type SetpointStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the override database at path.
func Open(ctx context.Context, path string) (*SetpointStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state schema: %w", err)
	}
	return &SetpointStore{db: db}, nil
}

// Save upserts one override.
func (s *SetpointStore) Save(ctx context.Context, name string, value float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO setpoint_overrides (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, domain.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save setpoint override %s: %w", name, err)
	}
	return nil
}

// Apply overlays stored overrides onto the given defaults. Overrides
// that fail validation (for example a stale row outside the humidity
// range) are skipped rather than failing the boot.
func (s *SetpointStore) Apply(ctx context.Context, defaults domain.Setpoints) (domain.Setpoints, []string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM setpoint_overrides`)
	if err != nil {
		return defaults, nil, fmt.Errorf("load setpoint overrides: %w", err)
	}
	defer rows.Close()

	result := defaults
	var skipped []string
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return defaults, nil, fmt.Errorf("scan setpoint override: %w", err)
		}
		updated, err := result.With(name, value)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		result = updated
	}
	if err := rows.Err(); err != nil {
		return defaults, nil, fmt.Errorf("iterate setpoint overrides: %w", err)
	}
	return result, skipped, nil
}

// Close closes the database.
func (s *SetpointStore) Close() error {
	return s.db.Close()
}
