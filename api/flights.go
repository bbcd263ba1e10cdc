package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

// scheduleRequest uses pointers so that an absent field fails binding
// instead of decoding to its zero value.
type scheduleRequest struct {
	FlightID      *int64     `json:"flight_id" binding:"required"`
	PilotID       *int64     `json:"pilot_id" binding:"required"`
	AircraftID    *int64     `json:"aircraft_id" binding:"required"`
	FlightPlan    *string    `json:"flight_plan" binding:"required"`
	DepartureTime *time.Time `json:"departure_time" binding:"required"`
}

func (r scheduleRequest) flight() domain.Flight {
	return domain.Flight{
		ID:            *r.FlightID,
		PilotID:       *r.PilotID,
		AircraftID:    *r.AircraftID,
		FlightPlan:    *r.FlightPlan,
		DepartureTime: *r.DepartureTime,
	}
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/schedule", h.schedule)
	router.GET("/view", h.upcoming)
	router.GET("/history", h.history)
	router.PUT("/:id/plan", h.updatePlan)
	router.DELETE("/:id", h.cancel)
}

func (h *FlightHandler) schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid flight: "+err.Error())
		return
	}

	flight, err := h.service.Schedule(c.Request.Context(), req.flight())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) upcoming(c *gin.Context) {
	list, err := h.service.ListUpcoming(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) history(c *gin.Context) {
	list, err := h.service.ListHistory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) updatePlan(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	var plan string
	if err := c.ShouldBindJSON(&plan); err != nil {
		badRequest(c, "Flight plan must be a JSON string.")
		return
	}

	if err := h.service.UpdatePlan(c.Request.Context(), id, plan); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Flight plan updated.")
}

func (h *FlightHandler) cancel(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Flight cancelled.")
}

func flightID(c *gin.Context) (int64, bool) {
	// Anything that is not an unsigned 32-bit id cannot name a flight.
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		writeError(c, domain.NewNotFoundError("Flight not found."))
		return 0, false
	}
	return int64(id), true
}
