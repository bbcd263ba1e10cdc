package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/weather"
	"github.com/gin-gonic/gin"
)

type WeatherHandler struct {
	service weather.WeatherUseCase
}

type weatherQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
}

func NewWeatherHandler(service weather.WeatherUseCase) *WeatherHandler {
	return &WeatherHandler{service: service}
}

func (h *WeatherHandler) Register(router *gin.RouterGroup) {
	router.GET("/weather", h.current)
}

func (h *WeatherHandler) current(c *gin.Context) {
	var q weatherQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "latitude and longitude must be numbers.")
		return
	}

	body, err := h.service.Current(c.Request.Context(), domain.WeatherRequest{
		Latitude:  *q.Latitude,
		Longitude: *q.Longitude,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
