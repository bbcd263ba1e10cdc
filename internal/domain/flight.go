package domain

import "time"

type Flight struct {
	ID            int64     `json:"flight_id"`
	PilotID       int64     `json:"pilot_id"`
	AircraftID    int64     `json:"aircraft_id"`
	FlightPlan    string    `json:"flight_plan"`
	DepartureTime time.Time `json:"departure_time"`
}

// IsInPast reports whether the flight departs strictly before now.
func (f Flight) IsInPast(now time.Time) bool {
	return f.DepartureTime.Before(now)
}

// IsUpcoming is the complement of IsInPast: a flight departing exactly at now is upcoming.
func (f Flight) IsUpcoming(now time.Time) bool {
	return !f.IsInPast(now)
}
