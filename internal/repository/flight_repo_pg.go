package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PGFlightRepository is the durable backend. Its columns are strongly typed,
// so a row that fails to scan means a broken query rather than a bad row and
// fails the whole list.
type PGFlightRepository struct {
	store *storage.PGStore
}

func NewPGFlightRepository(store *storage.PGStore) FlightRepository {
	return &PGFlightRepository{store: store}
}

func (r *PGFlightRepository) Create(ctx context.Context, f domain.Flight) error {
	err := r.store.WithLock(ctx, func(q storage.PGQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO flight (`+flightColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			f.ID, f.PilotID, f.AircraftID, f.FlightPlan, f.DepartureTime)
		return err
	})
	if err != nil {
		return translatePGError(err, f.ID)
	}
	return nil
}

func (r *PGFlightRepository) ListDepartingFrom(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flight WHERE departure_time >= $1 ORDER BY departure_time, flight_id`, now)
}

func (r *PGFlightRepository) ListDepartedBefore(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flight WHERE departure_time < $1 ORDER BY departure_time, flight_id`, now)
}

func (r *PGFlightRepository) list(ctx context.Context, query string, now time.Time) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	err := r.store.WithLock(ctx, func(q storage.PGQuerier) error {
		rows, err := q.Query(ctx, query, now)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var f domain.Flight
			if err := rows.Scan(&f.ID, &f.PilotID, &f.AircraftID, &f.FlightPlan, &f.DepartureTime); err != nil {
				return fmt.Errorf("scan flight: %w", err)
			}
			f.DepartureTime = f.DepartureTime.UTC()
			flights = append(flights, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) UpdatePlan(ctx context.Context, id int64, plan string) (int64, error) {
	return r.exec(ctx, `UPDATE flight SET flight_plan = $1 WHERE flight_id = $2`, plan, id)
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM flight WHERE flight_id = $1`, id)
}

func (r *PGFlightRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := r.store.WithLock(ctx, func(q storage.PGQuerier) error {
		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

func translatePGError(err error, flightID int64) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateFlight
		case pgForeignKeyViolation:
			return ErrUnknownReference
		}
	}
	return fmt.Errorf("insert flight %d: %w", flightID, err)
}

type PGPilotRepository struct {
	store *storage.PGStore
}

func NewPGPilotRepository(store *storage.PGStore) PilotRepository {
	return &PGPilotRepository{store: store}
}

func (r *PGPilotRepository) List(ctx context.Context) ([]domain.Pilot, error) {
	pilots := make([]domain.Pilot, 0)
	err := r.store.WithLock(ctx, func(q storage.PGQuerier) error {
		rows, err := q.Query(ctx, `SELECT pilot_id, name, license_number FROM pilot ORDER BY pilot_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p domain.Pilot
			if err := rows.Scan(&p.ID, &p.Name, &p.LicenseNumber); err != nil {
				return fmt.Errorf("scan pilot: %w", err)
			}
			pilots = append(pilots, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list pilots: %w", err)
	}
	return pilots, nil
}

type PGAircraftRepository struct {
	store *storage.PGStore
}

func NewPGAircraftRepository(store *storage.PGStore) AircraftRepository {
	return &PGAircraftRepository{store: store}
}

func (r *PGAircraftRepository) List(ctx context.Context) ([]domain.Aircraft, error) {
	aircraft := make([]domain.Aircraft, 0)
	err := r.store.WithLock(ctx, func(q storage.PGQuerier) error {
		rows, err := q.Query(ctx, `SELECT aircraft_id, model, capacity FROM aircraft ORDER BY aircraft_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a domain.Aircraft
			if err := rows.Scan(&a.ID, &a.Model, &a.Capacity); err != nil {
				return fmt.Errorf("scan aircraft: %w", err)
			}
			aircraft = append(aircraft, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list aircraft: %w", err)
	}
	return aircraft, nil
}

var (
	_ FlightRepository   = (*PGFlightRepository)(nil)
	_ PilotRepository    = (*PGPilotRepository)(nil)
	_ AircraftRepository = (*PGAircraftRepository)(nil)
)
