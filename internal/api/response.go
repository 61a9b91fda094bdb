// Package api implements the HTTP handlers of the operations surface.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// requestTimeout bounds handlers that only read the database
const requestTimeout = 5 * time.Second

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DeleteResponse represents a successful delete
type DeleteResponse struct {
	Message string `json:"message"`
}

// parseID reads a positive numeric path parameter, writing a 400 response
// when it is malformed
func parseID(c *gin.Context, param, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + what + " ID format",
		})
		return 0, false
	}
	return uint(id), true
}
