package notify

import (
	"context"
	"time"

	"github.com/Domenick1991/flightdesk/internal/events"
	"github.com/sirupsen/logrus"
)

// CrewNotifier tells the assigned crew about changes to their flights. The
// delivery channel is the log for now.
type CrewNotifier struct {
	log logrus.FieldLogger
}

func NewCrewNotifier(log logrus.FieldLogger) *CrewNotifier {
	return &CrewNotifier{log: log}
}

func (n *CrewNotifier) Notify(ctx context.Context, event events.FlightEvent) error {
	fields := logrus.Fields{
		"event_id":  event.EventID,
		"flight_id": event.FlightID,
	}

	switch event.Type {
	case events.FlightScheduled:
		fields["pilot_id"] = event.PilotID
		fields["aircraft_id"] = event.AircraftID
		if event.DepartureTime != nil {
			fields["departure_time"] = event.DepartureTime.UTC().Format(time.RFC3339)
		}
		n.log.WithFields(fields).Info("notify crew: flight scheduled")
	case events.FlightPlanUpdated:
		fields["flight_plan"] = event.FlightPlan
		n.log.WithFields(fields).Info("notify crew: flight plan changed")
	case events.FlightCancelled:
		n.log.WithFields(fields).Info("notify crew: flight cancelled")
	}
	return nil
}
