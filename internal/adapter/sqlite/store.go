// Package sqlite implements domain.IncidentStore on SQLite via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/riaar-assistant/internal/domain"
)

// timeLayout has fixed width so reported_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS incidents (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	severity    TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT '',
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	reported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_incidents_lat_lon ON incidents (lat, lon);
CREATE INDEX IF NOT EXISTS idx_incidents_reported_at ON incidents (reported_at);
`

// Store persists incidents in a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path in WAL mode and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Create inserts inc.
func (s *Store) Create(ctx context.Context, inc domain.Incident) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incidents (id, title, description, severity, type, lat, lon, reported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inc.ID, inc.Title, inc.Description, string(inc.Severity), inc.Type,
		inc.Lat, inc.Lon, inc.ReportedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert incident %s: %w", inc.ID, err)
	}
	return nil
}

// Get loads one incident by id.
func (s *Store) Get(ctx context.Context, id string) (domain.Incident, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, severity, type, lat, lon, reported_at
		 FROM incidents WHERE id = ?`, id)
	inc, err := scanIncident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Incident{}, domain.ErrIncidentNotFound
	}
	if err != nil {
		return domain.Incident{}, fmt.Errorf("get incident %s: %w", id, err)
	}
	return inc, nil
}

// List returns incidents inside filter.BBox, newest first. A severity filter
// matches both the color and its logical label.
func (s *Store) List(ctx context.Context, filter domain.IncidentFilter) ([]domain.Incident, error) {
	limit := filter.Limit
	if limit <= 0 || limit > domain.MaxIncidents {
		limit = domain.MaxIncidents
	}

	query := `SELECT id, title, description, severity, type, lat, lon, reported_at
		FROM incidents
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`
	args := []any{filter.BBox.South, filter.BBox.North, filter.BBox.West, filter.BBox.East}
	if filter.Severity != domain.SeverityNone {
		query += ` AND severity IN (?, ?)`
		args = append(args, string(filter.Severity), filter.Severity.LogicalLabel())
	}
	query += ` ORDER BY reported_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// Ping reports whether the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIncident(sc scanner) (domain.Incident, error) {
	var (
		inc      domain.Incident
		severity string
		reported string
	)
	if err := sc.Scan(&inc.ID, &inc.Title, &inc.Description, &severity, &inc.Type, &inc.Lat, &inc.Lon, &reported); err != nil {
		return domain.Incident{}, err
	}
	// Rows written before severities were normalized may hold logical labels.
	inc.Severity = domain.NormalizeSeverity(severity)
	t, err := time.Parse(timeLayout, reported)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("parse reported_at %q: %w", reported, err)
	}
	inc.ReportedAt = t
	return inc, nil
}
