package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ghosttier/arsenal-server/internal/loadout"
)

// Response is the envelope every endpoint replies with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// respondLoadoutError maps a loadout error kind onto its response code.
func respondLoadoutError(c *gin.Context, err error) {
	var status int
	switch loadout.KindOf(err) {
	case loadout.KindUnauthenticated:
		status = http.StatusUnauthorized
	case loadout.KindForbidden:
		status = http.StatusForbidden
	case loadout.KindNotFound:
		status = http.StatusNotFound
	case loadout.KindCapacityExceeded:
		status = http.StatusBadRequest
	case loadout.KindValidationFailed:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	respondError(c, status, message)
}
