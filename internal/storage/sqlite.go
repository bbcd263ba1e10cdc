// Package storage owns the embedded relational store backing the flight
// service. All access goes through a single lock so statements never
// interleave.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightdesk/internal/metrics"
	_ "modernc.org/sqlite"
)

// TimeLayout is the on-disk form of flight departure times. It is fixed width
// and always UTC so that text comparison in SQL orders chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Querier is the statement surface handed to callers holding the lock.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store wraps one SQLite connection behind an exclusive lock.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens the SQLite database at dsn and creates the schema and seed rows.
// ":memory:" keeps everything in process memory for the lifetime of the Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database lives and dies with its connection, so the pool
	// must hold exactly one and never recycle it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := New(db)
	if err := s.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database without touching its schema.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Initialize creates the pilot, aircraft and flight tables and loads the seed
// pilots and aircraft.
func (s *Store) Initialize(ctx context.Context) error {
	return s.WithLock(ctx, func(q Querier) error {
		if _, err := q.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := q.ExecContext(ctx, seed); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
		return nil
	})
}

// WithLock runs fn with exclusive access to the store. fn must not block on
// anything other than the statements it issues.
func (s *Store) WithLock(ctx context.Context, fn func(q Querier) error) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.ObserveLockWait(time.Since(start))

	return fn(s.db)
}

// Ping checks the connection under the lock.
func (s *Store) Ping(ctx context.Context) error {
	return s.WithLock(ctx, func(Querier) error {
		return s.db.PingContext(ctx)
	})
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Foreign keys are declared but SQLite leaves enforcement off unless the
// connection enables it; flights referencing unknown pilots or aircraft are
// accepted.
const schema = `
CREATE TABLE IF NOT EXISTS pilot (
	pilot_id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	license_number TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aircraft (
	aircraft_id INTEGER PRIMARY KEY,
	model TEXT NOT NULL,
	capacity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS flight (
	flight_id INTEGER PRIMARY KEY,
	pilot_id INTEGER NOT NULL,
	aircraft_id INTEGER NOT NULL,
	flight_plan TEXT NOT NULL,
	departure_time TEXT NOT NULL,
	FOREIGN KEY(pilot_id) REFERENCES pilot(pilot_id),
	FOREIGN KEY(aircraft_id) REFERENCES aircraft(aircraft_id)
);

CREATE INDEX IF NOT EXISTS idx_flight_departure_time ON flight(departure_time);
`

const seed = `
INSERT OR IGNORE INTO pilot VALUES (101, 'Alice Wong', 'LIC-ALW-001');
INSERT OR IGNORE INTO pilot VALUES (102, 'Bob Tan', 'LIC-BTN-002');

INSERT OR IGNORE INTO aircraft VALUES (202, 'Cessna 172', 4);
INSERT OR IGNORE INTO aircraft VALUES (203, 'Piper PA-28', 4);
`
