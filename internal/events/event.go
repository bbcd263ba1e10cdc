package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/google/uuid"
)

type EventType string

const (
	FlightScheduled   EventType = "flight_scheduled"
	FlightPlanUpdated EventType = "flight_plan_updated"
	FlightCancelled   EventType = "flight_cancelled"
)

// FlightEvent is published after a flight mutation has been committed.
// Cancel and plan-update events only know the flight id (and the new plan).
type FlightEvent struct {
	EventID       string     `json:"event_id"`
	Type          EventType  `json:"type"`
	FlightID      int64      `json:"flight_id"`
	PilotID       int64      `json:"pilot_id,omitempty"`
	AircraftID    int64      `json:"aircraft_id,omitempty"`
	FlightPlan    string     `json:"flight_plan,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func NewScheduledEvent(f domain.Flight, at time.Time) FlightEvent {
	departure := f.DepartureTime
	return FlightEvent{
		EventID:       uuid.NewString(),
		Type:          FlightScheduled,
		FlightID:      f.ID,
		PilotID:       f.PilotID,
		AircraftID:    f.AircraftID,
		FlightPlan:    f.FlightPlan,
		DepartureTime: &departure,
		OccurredAt:    at,
	}
}

func NewPlanUpdatedEvent(flightID int64, plan string, at time.Time) FlightEvent {
	return FlightEvent{
		EventID:    uuid.NewString(),
		Type:       FlightPlanUpdated,
		FlightID:   flightID,
		FlightPlan: plan,
		OccurredAt: at,
	}
}

func NewCancelledEvent(flightID int64, at time.Time) FlightEvent {
	return FlightEvent{
		EventID:    uuid.NewString(),
		Type:       FlightCancelled,
		FlightID:   flightID,
		OccurredAt: at,
	}
}

// Key partitions events by flight so a consumer sees each flight's events in order.
func (e FlightEvent) Key() string {
	return strconv.FormatInt(e.FlightID, 10)
}

func DecodeFlightEvent(data []byte) (FlightEvent, error) {
	var e FlightEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return FlightEvent{}, fmt.Errorf("decode flight event: %w", err)
	}
	switch e.Type {
	case FlightScheduled, FlightPlanUpdated, FlightCancelled:
	default:
		return FlightEvent{}, fmt.Errorf("decode flight event: unknown type %q", e.Type)
	}
	return e, nil
}
