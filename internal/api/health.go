package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stwalsh4118/playout/internal/db"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status   string         `json:"status"`
	Database string         `json:"database"`
	Library  string         `json:"library,omitempty"`
	Time     string         `json:"time"`
	Details  map[string]any `json:"details,omitempty"`
}

// BreakerState reports the state of a circuit breaker
type BreakerState interface {
	State() gobreaker.State
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db      *db.DB
	library BreakerState
}

// NewHealthHandler creates a new health check handler. library may be nil.
func NewHealthHandler(database *db.DB, library BreakerState) *HealthHandler {
	return &HealthHandler{db: database, library: library}
}

// Check handles the health check endpoint. An open library breaker degrades
// the status but still answers 200 since existing timelines keep playing.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:  "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Details: make(map[string]any),
	}

	if err := h.db.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "unhealthy"
		response.Details["database_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Database = "healthy"

	if h.library != nil {
		state := h.library.State()
		response.Library = state.String()
		if state != gobreaker.StateClosed {
			response.Status = "degraded"
		}
	}

	c.JSON(http.StatusOK, response)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, database *db.DB, library BreakerState) {
	handler := NewHealthHandler(database, library)
	apiGroup.GET("/health", handler.Check)
}
