package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/models"
	"github.com/stwalsh4118/playout/internal/playout"
)

const (
	// maxItemsWindow caps the range of a timeline listing
	maxItemsWindow = 14 * 24 * time.Hour

	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// BuildRequest is the optional body of a build trigger
type BuildRequest struct {
	Reset bool `json:"reset"`
	// Hours overrides the configured horizon
	Hours int `json:"hours" binding:"gte=0,lte=720"`
	// From is the reset point or the start of a first build
	From *time.Time `json:"from,omitempty"`
}

// TimelineResponse lists generated items and gaps in a window
type TimelineResponse struct {
	From  time.Time            `json:"from"`
	To    time.Time            `json:"to"`
	Items []models.PlayoutItem `json:"items"`
	Gaps  []models.PlayoutGap  `json:"gaps"`
}

// HistoryResponse lists recorded activations, newest first
type HistoryResponse struct {
	History []models.PlayoutHistory `json:"history"`
}

// PlayoutHandler exposes build triggers and the generated timeline
type PlayoutHandler struct {
	service *playout.Service
	repos   *db.Repositories
	build   config.BuildConfig
}

// NewPlayoutHandler creates a new playout handler instance
func NewPlayoutHandler(service *playout.Service, repos *db.Repositories, build config.BuildConfig) *PlayoutHandler {
	return &PlayoutHandler{service: service, repos: repos, build: build}
}

// Build handles POST /api/playouts/:id/build. The build runs synchronously
// and answers with its summary.
func (h *PlayoutHandler) Build(c *gin.Context) {
	id, ok := parseID(c, "id", "playout")
	if !ok {
		return
	}

	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	horizon := h.build.Horizon
	if req.Hours > 0 {
		horizon = time.Duration(req.Hours) * time.Hour
	}
	opts := playout.BuildOptions{
		Until: time.Now().UTC().Add(horizon),
		Reset: req.Reset,
	}
	if req.From != nil {
		opts.From = req.From.UTC()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.build.Timeout)
	defer cancel()

	result, err := h.service.Build(ctx, id, opts)
	if err != nil {
		switch {
		case playout.IsBuildInProgress(err):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "build_in_progress",
				Message: "A build of this playout is already running",
			})
		case playout.IsPlayoutNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Playout not found",
			})
		case playout.IsNoSchedule(err):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "no_schedule",
				Message: "Playout has no schedule to generate from",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "build_failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/playouts/:id/status
func (h *PlayoutHandler) Status(c *gin.Context) {
	id, ok := parseID(c, "id", "playout")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	status, err := h.service.Status(ctx, id)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Uint("playout_id", id).
			Msg("Failed to get build status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve build status",
		})
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Playout has not been built",
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Items handles GET /api/playouts/:id/items?from=&to= (RFC 3339). The window
// defaults to the next 24 hours.
func (h *PlayoutHandler) Items(c *gin.Context) {
	id, ok := parseID(c, "id", "playout")
	if !ok {
		return
	}

	from := time.Now().UTC()
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_from", Message: err.Error()})
			return
		}
		from = t.UTC()
	}
	to := from.Add(24 * time.Hour)
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_to", Message: err.Error()})
			return
		}
		to = t.UTC()
	}
	if !to.After(from) || to.Sub(from) > maxItemsWindow {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_window",
			Message: "to must be after from and at most 14 days later",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.repos.Playouts.Get(ctx, id); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Playout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "query_failed", Message: "Failed to retrieve playout"})
		return
	}

	items, err := h.repos.Playouts.Items(ctx, id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "query_failed", Message: "Failed to retrieve items"})
		return
	}
	gaps, err := h.repos.Playouts.Gaps(ctx, id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "query_failed", Message: "Failed to retrieve gaps"})
		return
	}

	c.JSON(http.StatusOK, TimelineResponse{From: from, To: to, Items: items, Gaps: gaps})
}

// History handles GET /api/playouts/:id/history?key=&limit=. With key only
// the most recent activation under that key is returned.
func (h *PlayoutHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id", "playout")
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be between 1 and 200",
			})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.repos.Playouts.Get(ctx, id); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Playout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "query_failed", Message: "Failed to retrieve playout"})
		return
	}

	resp := HistoryResponse{History: []models.PlayoutHistory{}}
	if key := c.Query("key"); key != "" {
		last, err := h.service.LastPlayed(ctx, id, key)
		if err != nil {
			logger.Log.Error().Err(err).Uint("playout_id", id).Str("key", key).Msg("Failed to get last activation")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "query_failed", Message: "Failed to retrieve history"})
			return
		}
		if last != nil {
			resp.History = append(resp.History, *last)
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	history, err := h.repos.Playouts.History(ctx, id, limit)
	if err != nil {
		logger.Log.Error().Err(err).Uint("playout_id", id).Msg("Failed to list history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "query_failed", Message: "Failed to retrieve history"})
		return
	}
	resp.History = append(resp.History, history...)
	c.JSON(http.StatusOK, resp)
}

// SetupPlayoutRoutes registers build and timeline routes
func SetupPlayoutRoutes(apiGroup *gin.RouterGroup, service *playout.Service, repos *db.Repositories, build config.BuildConfig) {
	handler := NewPlayoutHandler(service, repos, build)

	apiGroup.POST("/playouts/:id/build", handler.Build)
	apiGroup.GET("/playouts/:id/status", handler.Status)
	apiGroup.GET("/playouts/:id/items", handler.Items)
	apiGroup.GET("/playouts/:id/history", handler.History)
}
