package flights

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/events"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	Schedule(ctx context.Context, flight domain.Flight) (*domain.Flight, error)
	ListUpcoming(ctx context.Context) ([]domain.Flight, error)
	ListHistory(ctx context.Context) ([]domain.Flight, error)
	UpdatePlan(ctx context.Context, id int64, plan string) error
	Cancel(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	repo     repository.FlightRepository
	producer Producer
	topic    string
	now      func() time.Time
	log      logrus.FieldLogger
}

type FlightServiceOption func(*FlightService)

// WithEvents publishes flight lifecycle events to topic after each successful mutation.
func WithEvents(producer Producer, topic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func WithLogger(log logrus.FieldLogger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(repo repository.FlightRepository, opts ...FlightServiceOption) *FlightService {
	service := &FlightService{
		repo: repo,
		now:  time.Now,
		log:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FlightService) Schedule(ctx context.Context, flight domain.Flight) (*domain.Flight, error) {
	if err := validateIDs(flight); err != nil {
		return nil, s.record("schedule", err)
	}
	if strings.TrimSpace(flight.FlightPlan) == "" {
		return nil, s.record("schedule", domain.NewValidationError("Flight plan is required."))
	}
	now := s.now()
	if flight.IsInPast(now) {
		return nil, s.record("schedule", domain.NewValidationError("Departure time cannot be in the past."))
	}

	if err := s.repo.Create(ctx, flight); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateFlight):
			return nil, s.record("schedule", domain.NewConflictError("Flight ID already exists."))
		case errors.Is(err, repository.ErrUnknownReference):
			return nil, s.record("schedule", domain.NewValidationError("Pilot or aircraft does not exist."))
		default:
			return nil, s.record("schedule", domain.NewInternalError("Failed to schedule flight.", err))
		}
	}

	s.publish(ctx, events.NewScheduledEvent(flight, now))
	s.record("schedule", nil)
	return &flight, nil
}

func (s *FlightService) ListUpcoming(ctx context.Context) ([]domain.Flight, error) {
	flights, err := s.repo.ListDepartingFrom(ctx, s.now())
	if err != nil {
		return nil, s.record("list_upcoming", domain.NewInternalError("Failed to load flights.", err))
	}
	s.record("list_upcoming", nil)
	return flights, nil
}

func (s *FlightService) ListHistory(ctx context.Context) ([]domain.Flight, error) {
	flights, err := s.repo.ListDepartedBefore(ctx, s.now())
	if err != nil {
		return nil, s.record("list_history", domain.NewInternalError("Failed to load flight history.", err))
	}
	s.record("list_history", nil)
	return flights, nil
}

func (s *FlightService) UpdatePlan(ctx context.Context, id int64, plan string) error {
	if strings.TrimSpace(plan) == "" {
		return s.record("update_plan", domain.NewValidationError("New flight plan cannot be empty."))
	}

	affected, err := s.repo.UpdatePlan(ctx, id, plan)
	if err != nil {
		return s.record("update_plan", domain.NewInternalError("Failed to update flight plan.", err))
	}
	if affected == 0 {
		return s.record("update_plan", domain.NewNotFoundError("Flight not found."))
	}
	if affected > 1 {
		s.log.WithFields(logrus.Fields{"flight_id": id, "rows": affected}).Error("flight id matched more than one row")
	}

	s.publish(ctx, events.NewPlanUpdatedEvent(id, plan, s.now()))
	s.record("update_plan", nil)
	return nil
}

func (s *FlightService) Cancel(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.record("cancel", domain.NewInternalError("Failed to cancel flight.", err))
	}
	if affected == 0 {
		return s.record("cancel", domain.NewNotFoundError("Flight not found."))
	}

	s.publish(ctx, events.NewCancelledEvent(id, s.now()))
	s.record("cancel", nil)
	return nil
}

// publish runs after the store lock has been released; failures only warn.
func (s *FlightService) publish(ctx context.Context, event events.FlightEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.Key(), event); err != nil {
		s.log.WithFields(logrus.Fields{
			"flight_id": event.FlightID,
			"type":      event.Type,
		}).WithError(err).Warn("failed to publish flight event")
	}
}

func (s *FlightService) record(operation string, err error) error {
	metrics.RecordFlightOperation(operation, resultOf(err))
	if err != nil && errors.Is(err, domain.ErrInternal) {
		s.log.WithField("op", operation).WithError(err).Error("flight operation failed")
	}
	return err
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// Identifiers are unsigned 32-bit values.
func validateIDs(f domain.Flight) error {
	for _, id := range []struct {
		name  string
		value int64
	}{
		{"flight_id", f.ID},
		{"pilot_id", f.PilotID},
		{"aircraft_id", f.AircraftID},
	} {
		if id.value < 0 || id.value > math.MaxUint32 {
			return domain.NewValidationError(id.name + " must be between 0 and 4294967295.")
		}
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
