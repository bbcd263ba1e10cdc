package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/service/directory"
	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	service directory.DirectoryUseCase
}

func NewDirectoryHandler(service directory.DirectoryUseCase) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) Register(router *gin.RouterGroup) {
	router.GET("/pilots", h.pilots)
	router.GET("/aircraft", h.aircraft)
}

func (h *DirectoryHandler) pilots(c *gin.Context) {
	pilots, err := h.service.ListPilots(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pilots)
}

func (h *DirectoryHandler) aircraft(c *gin.Context) {
	aircraft, err := h.service.ListAircraft(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, aircraft)
}
