package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

var (
	ErrDuplicateFlight  = errors.New("flight id already exists")
	ErrUnknownReference = errors.New("pilot or aircraft does not exist")
)

// FlightRepository persists flights. List methods never fail on a single bad
// row; such rows are logged and left out of the result.
type FlightRepository interface {
	Create(ctx context.Context, flight domain.Flight) error
	// ListDepartingFrom returns flights with departure_time >= now.
	ListDepartingFrom(ctx context.Context, now time.Time) ([]domain.Flight, error)
	// ListDepartedBefore returns flights with departure_time < now.
	ListDepartedBefore(ctx context.Context, now time.Time) ([]domain.Flight, error)
	UpdatePlan(ctx context.Context, id int64, plan string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type PilotRepository interface {
	List(ctx context.Context) ([]domain.Pilot, error)
}

type AircraftRepository interface {
	List(ctx context.Context) ([]domain.Aircraft, error)
}
