package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/Domenick1991/flightdesk/internal/storage"
	"github.com/sirupsen/logrus"
)

type SQLitePilotRepository struct {
	store *storage.Store
	log   logrus.FieldLogger
}

func NewSQLitePilotRepository(store *storage.Store, log logrus.FieldLogger) PilotRepository {
	return &SQLitePilotRepository{store: store, log: log}
}

func (r *SQLitePilotRepository) List(ctx context.Context) ([]domain.Pilot, error) {
	pilots := make([]domain.Pilot, 0)
	err := r.store.WithLock(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx, `SELECT pilot_id, name, license_number FROM pilot ORDER BY pilot_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p domain.Pilot
			if err := rows.Scan(&p.ID, &p.Name, &p.LicenseNumber); err != nil {
				metrics.RecordSkippedRow("pilot")
				r.log.WithError(err).Warn("skipping undecodable pilot row")
				continue
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

type SQLiteAircraftRepository struct {
	store *storage.Store
	log   logrus.FieldLogger
}

func NewSQLiteAircraftRepository(store *storage.Store, log logrus.FieldLogger) AircraftRepository {
	return &SQLiteAircraftRepository{store: store, log: log}
}

func (r *SQLiteAircraftRepository) List(ctx context.Context) ([]domain.Aircraft, error) {
	aircraft := make([]domain.Aircraft, 0)
	err := r.store.WithLock(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx, `SELECT aircraft_id, model, capacity FROM aircraft ORDER BY aircraft_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a domain.Aircraft
			if err := rows.Scan(&a.ID, &a.Model, &a.Capacity); err != nil {
				metrics.RecordSkippedRow("aircraft")
				r.log.WithError(err).Warn("skipping undecodable aircraft row")
				continue
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
	_ PilotRepository    = (*SQLitePilotRepository)(nil)
	_ AircraftRepository = (*SQLiteAircraftRepository)(nil)
)
