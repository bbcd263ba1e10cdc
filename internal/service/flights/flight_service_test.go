package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/events"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(ctx context.Context, flight domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) ListDepartingFrom(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListDepartedBefore(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) UpdatePlan(ctx context.Context, id int64, plan string) (int64, error) {
	args := m.Called(ctx, id, plan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newService(repo *MockFlightRepository, opts ...FlightServiceOption) *FlightService {
	opts = append([]FlightServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewFlightService(repo, opts...)
}

func validFlight() domain.Flight {
	return domain.Flight{
		ID:            1,
		PilotID:       101,
		AircraftID:    202,
		FlightPlan:    "VFR direct",
		DepartureTime: fixedNow.Add(time.Hour),
	}
}

func TestFlightService_Schedule_Success(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	flight := validFlight()

	mockRepo.On("Create", ctx, flight).Return(nil).Once()

	result, err := service.Schedule(ctx, flight)

	assert.NoError(t, err)
	assert.Equal(t, &flight, result)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Schedule_DepartingNowIsAccepted(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	flight := validFlight()
	flight.DepartureTime = fixedNow

	mockRepo.On("Create", ctx, flight).Return(nil).Once()

	_, err := service.Schedule(ctx, flight)

	assert.NoError(t, err)
}

func TestFlightService_Schedule_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Flight)
		message string
	}{
		{"empty plan", func(f *domain.Flight) { f.FlightPlan = "" }, "Flight plan is required."},
		{"whitespace plan", func(f *domain.Flight) { f.FlightPlan = " \t\n" }, "Flight plan is required."},
		{"whitespace plan with past departure", func(f *domain.Flight) {
			f.FlightPlan = "  "
			f.DepartureTime = fixedNow.Add(-time.Hour)
		}, "Flight plan is required."},
		{"past departure", func(f *domain.Flight) { f.DepartureTime = fixedNow.Add(-time.Nanosecond) }, "Departure time cannot be in the past."},
		{"negative flight id", func(f *domain.Flight) { f.ID = -1 }, "flight_id must be between 0 and 4294967295."},
		{"pilot id overflow", func(f *domain.Flight) { f.PilotID = 1 << 32 }, "pilot_id must be between 0 and 4294967295."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockFlightRepository{}
			service := newService(mockRepo)
			flight := validFlight()
			tt.mutate(&flight)

			result, err := service.Schedule(context.Background(), flight)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.message, domain.Message(err))
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestFlightService_Schedule_Duplicate(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	flight := validFlight()

	mockRepo.On("Create", ctx, flight).Return(repository.ErrDuplicateFlight).Once()

	result, err := service.Schedule(ctx, flight)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Flight ID already exists.", domain.Message(err))
}

func TestFlightService_Schedule_UnknownReference(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	flight := validFlight()

	mockRepo.On("Create", ctx, flight).Return(repository.ErrUnknownReference).Once()

	_, err := service.Schedule(ctx, flight)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_Schedule_StoreFailure(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	flight := validFlight()
	storeErr := errors.New("database is locked")

	mockRepo.On("Create", ctx, flight).Return(storeErr).Once()

	_, err := service.Schedule(ctx, flight)

	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, "Failed to schedule flight.", domain.Message(err))
}

func TestFlightService_Schedule_PublishesEvent(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockProducer := &MockProducer{}
	service := newService(mockRepo, WithEvents(mockProducer, "flight-events"))
	ctx := context.Background()
	flight := validFlight()

	mockRepo.On("Create", ctx, flight).Return(nil).Once()
	mockProducer.On("Publish", ctx, "flight-events", "1", mock.MatchedBy(func(e events.FlightEvent) bool {
		return e.Type == events.FlightScheduled && e.FlightID == 1 && e.FlightPlan == "VFR direct" && e.OccurredAt.Equal(fixedNow)
	})).Return(nil).Once()

	_, err := service.Schedule(ctx, flight)

	assert.NoError(t, err)
	mockProducer.AssertExpectations(t)
}

func TestFlightService_Schedule_PublishFailureIsNotFatal(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockProducer := &MockProducer{}
	service := newService(mockRepo, WithEvents(mockProducer, "flight-events"))
	ctx := context.Background()
	flight := validFlight()

	mockRepo.On("Create", ctx, flight).Return(nil).Once()
	mockProducer.On("Publish", ctx, "flight-events", "1", mock.Anything).Return(errors.New("broker down")).Once()

	result, err := service.Schedule(ctx, flight)

	assert.NoError(t, err)
	assert.Equal(t, &flight, result)
}

func TestFlightService_Schedule_NoEventOnFailure(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockProducer := &MockProducer{}
	service := newService(mockRepo, WithEvents(mockProducer, "flight-events"))
	ctx := context.Background()
	flight := validFlight()

	mockRepo.On("Create", ctx, flight).Return(repository.ErrDuplicateFlight).Once()

	_, err := service.Schedule(ctx, flight)

	assert.Error(t, err)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestFlightService_ListUpcoming(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	flights := []domain.Flight{validFlight()}

	mockRepo.On("ListDepartingFrom", ctx, fixedNow).Return(flights, nil).Once()

	result, err := service.ListUpcoming(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "ListDepartedBefore")
}

func TestFlightService_ListHistory(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()
	past := validFlight()
	past.DepartureTime = fixedNow.Add(-time.Hour)

	mockRepo.On("ListDepartedBefore", ctx, fixedNow).Return([]domain.Flight{past}, nil).Once()

	result, err := service.ListHistory(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []domain.Flight{past}, result)
}

func TestFlightService_ListUpcoming_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	mockRepo.On("ListDepartingFrom", ctx, fixedNow).Return(nil, errors.New("database error")).Once()

	result, err := service.ListUpcoming(ctx)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestFlightService_UpdatePlan(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockProducer := &MockProducer{}
	service := newService(mockRepo, WithEvents(mockProducer, "flight-events"))
	ctx := context.Background()

	mockRepo.On("UpdatePlan", ctx, int64(1), "IFR via VOR").Return(int64(1), nil).Once()
	mockProducer.On("Publish", ctx, "flight-events", "1", mock.MatchedBy(func(e events.FlightEvent) bool {
		return e.Type == events.FlightPlanUpdated && e.FlightPlan == "IFR via VOR"
	})).Return(nil).Once()

	err := service.UpdatePlan(ctx, 1, "IFR via VOR")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestFlightService_UpdatePlan_EmptyPlan(t *testing.T) {
	for _, plan := range []string{"", "   ", "\n\t"} {
		mockRepo := &MockFlightRepository{}
		service := newService(mockRepo)

		err := service.UpdatePlan(context.Background(), 1, plan)

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "New flight plan cannot be empty.", domain.Message(err))
		mockRepo.AssertNotCalled(t, "UpdatePlan")
	}
}

func TestFlightService_UpdatePlan_NotFound(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockProducer := &MockProducer{}
	service := newService(mockRepo, WithEvents(mockProducer, "flight-events"))
	ctx := context.Background()

	mockRepo.On("UpdatePlan", ctx, int64(999), "valid plan").Return(int64(0), nil).Once()

	err := service.UpdatePlan(ctx, 999, "valid plan")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Flight not found.", domain.Message(err))
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestFlightService_Cancel(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(1), nil).Once()
	mockRepo.On("Delete", ctx, int64(1)).Return(int64(0), nil).Once()

	assert.NoError(t, service.Cancel(ctx, 1))
	err := service.Cancel(ctx, 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Cancel_StoreFailure(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(int64(0), errors.New("disk I/O error")).Once()

	err := service.Cancel(ctx, 1)

	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, "Failed to cancel flight.", domain.Message(err))
}
