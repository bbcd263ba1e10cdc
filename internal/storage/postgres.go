package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGQuerier is the statement surface handed to callers holding the
// Postgres store lock. *pgxpool.Pool satisfies it.
type PGQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGStore is the durable backend. It serializes access the same way Store
// does, over a pool capped at one connection.
type PGStore struct {
	mu   sync.Mutex
	db   PGQuerier
	pool *pgxpool.Pool
}

// OpenPostgres connects to a durable Postgres database and applies the same
// schema and seed rows as the embedded store.
func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewPGStore(pool)
	s.pool = pool
	if err := s.Initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPGStore wraps db without touching its schema.
func NewPGStore(db PGQuerier) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Initialize(ctx context.Context) error {
	return s.WithLock(ctx, func(q PGQuerier) error {
		if _, err := q.Exec(ctx, pgSchema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := q.Exec(ctx, pgSeed); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
		return nil
	})
}

// WithLock runs fn with exclusive access to the store. Rows returned by q
// must be consumed before fn returns.
func (s *PGStore) WithLock(ctx context.Context, fn func(q PGQuerier) error) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.ObserveLockWait(time.Since(start))

	return fn(s.db)
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.WithLock(ctx, func(q PGQuerier) error {
		_, err := q.Exec(ctx, "SELECT 1")
		return err
	})
}

func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Unlike SQLite, Postgres enforces the foreign keys.
const pgSchema = `
CREATE TABLE IF NOT EXISTS pilot (
	pilot_id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	license_number TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aircraft (
	aircraft_id BIGINT PRIMARY KEY,
	model TEXT NOT NULL,
	capacity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS flight (
	flight_id BIGINT PRIMARY KEY,
	pilot_id BIGINT NOT NULL REFERENCES pilot(pilot_id),
	aircraft_id BIGINT NOT NULL REFERENCES aircraft(aircraft_id),
	flight_plan TEXT NOT NULL,
	departure_time TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flight_departure_time ON flight(departure_time);
`

const pgSeed = `
INSERT INTO pilot VALUES (101, 'Alice Wong', 'LIC-ALW-001'), (102, 'Bob Tan', 'LIC-BTN-002')
	ON CONFLICT (pilot_id) DO NOTHING;
INSERT INTO aircraft VALUES (202, 'Cessna 172', 4), (203, 'Piper PA-28', 4)
	ON CONFLICT (aircraft_id) DO NOTHING;
`
