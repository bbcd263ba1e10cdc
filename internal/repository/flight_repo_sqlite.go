package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/Domenick1991/flightdesk/internal/storage"
	"github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const flightColumns = `flight_id, pilot_id, aircraft_id, flight_plan, departure_time`

type SQLiteFlightRepository struct {
	store *storage.Store
	log   logrus.FieldLogger
}

func NewSQLiteFlightRepository(store *storage.Store, log logrus.FieldLogger) FlightRepository {
	return &SQLiteFlightRepository{store: store, log: log}
}

func (r *SQLiteFlightRepository) Create(ctx context.Context, f domain.Flight) error {
	err := r.store.WithLock(ctx, func(q storage.Querier) error {
		_, err := q.ExecContext(ctx, `INSERT INTO flight (`+flightColumns+`) VALUES (?, ?, ?, ?, ?)`,
			f.ID, f.PilotID, f.AircraftID, f.FlightPlan, storage.FormatTime(f.DepartureTime))
		return err
	})
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateFlight
		}
		return fmt.Errorf("insert flight %d: %w", f.ID, err)
	}
	return nil
}

func (r *SQLiteFlightRepository) ListDepartingFrom(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flight WHERE departure_time >= ? ORDER BY departure_time, flight_id`, now)
}

func (r *SQLiteFlightRepository) ListDepartedBefore(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flight WHERE departure_time < ? ORDER BY departure_time, flight_id`, now)
}

func (r *SQLiteFlightRepository) list(ctx context.Context, query string, now time.Time) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	err := r.store.WithLock(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx, query, storage.FormatTime(now))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				f         domain.Flight
				departure string
			)
			if err := rows.Scan(&f.ID, &f.PilotID, &f.AircraftID, &f.FlightPlan, &departure); err != nil {
				r.skip(err, logrus.Fields{})
				continue
			}
			t, err := time.Parse(time.RFC3339Nano, departure)
			if err != nil {
				r.skip(err, logrus.Fields{"flight_id": f.ID, "departure_time": departure})
				continue
			}
			f.DepartureTime = t.UTC()
			flights = append(flights, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (r *SQLiteFlightRepository) skip(err error, fields logrus.Fields) {
	metrics.RecordSkippedRow("flight")
	r.log.WithFields(fields).WithError(err).Warn("skipping undecodable flight row")
}

func (r *SQLiteFlightRepository) UpdatePlan(ctx context.Context, id int64, plan string) (int64, error) {
	return r.exec(ctx, `UPDATE flight SET flight_plan = ? WHERE flight_id = ?`, plan, id)
}

func (r *SQLiteFlightRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM flight WHERE flight_id = ?`, id)
}

func (r *SQLiteFlightRepository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var affected int64
	err := r.store.WithLock(ctx, func(q storage.Querier) error {
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

var _ FlightRepository = (*SQLiteFlightRepository)(nil)
