package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/gin-gonic/gin"
)

// statusFor maps the domain error kinds onto HTTP. Configuration, upstream and
// internal failures are all the server's problem.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.String(statusFor(err), domain.Message(err))
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, domain.NewValidationError(msg))
}
