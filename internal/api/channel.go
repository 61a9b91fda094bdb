package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/playout/internal/channel"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/models"
	"github.com/stwalsh4118/playout/internal/timeline"
)

// CreateChannelRequest represents a request to create a new channel
type CreateChannelRequest struct {
	Number   string `json:"number" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone,omitempty"`
}

// AssignScheduleRequest points a channel's playout at a program schedule
type AssignScheduleRequest struct {
	ProgramScheduleID uint `json:"program_schedule_id" binding:"required"`
}

// ChannelResponse represents a channel in API responses
type ChannelResponse struct {
	ID        uint      `json:"id"`
	UniqueID  string    `json:"unique_id"`
	Number    string    `json:"number"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	PlayoutID uint      `json:"playout_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelListResponse represents a list of channels
type ChannelListResponse struct {
	Channels []*ChannelResponse `json:"channels"`
}

// ChannelHandler handles channel-related API requests
type ChannelHandler struct {
	channelService  *channel.ChannelService
	timelineService *timeline.TimelineService
}

// NewChannelHandler creates a new channel handler instance
func NewChannelHandler(channelService *channel.ChannelService, timelineService *timeline.TimelineService) *ChannelHandler {
	return &ChannelHandler{
		channelService:  channelService,
		timelineService: timelineService,
	}
}

func toChannelResponse(ch *models.Channel, playoutID uint) *ChannelResponse {
	return &ChannelResponse{
		ID:        ch.ID,
		UniqueID:  ch.UniqueID.String(),
		Number:    ch.Number,
		Name:      ch.Name,
		Timezone:  ch.Timezone,
		PlayoutID: playoutID,
		CreatedAt: ch.CreatedAt,
	}
}

// CreateChannel handles POST /api/channels
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ch, p, err := h.channelService.CreateChannel(ctx, req.Number, req.Name, req.Timezone)
	if err != nil {
		if errors.Is(err, channel.ErrInvalidTimezone) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_timezone",
				Message: "Unknown timezone " + req.Timezone,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create channel",
		})
		return
	}

	c.JSON(http.StatusCreated, toChannelResponse(ch, p.ID))
}

// ListChannels handles GET /api/channels
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	channels, err := h.channelService.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve channel list",
		})
		return
	}

	responses := make([]*ChannelResponse, len(channels))
	for i, ch := range channels {
		responses[i] = toChannelResponse(ch, 0)
	}

	c.JSON(http.StatusOK, ChannelListResponse{
		Channels: responses,
	})
}

// GetChannel handles GET /api/channels/:id
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ch, err := h.channelService.GetByID(ctx, id)
	if err != nil {
		h.channelError(c, err, id)
		return
	}
	p, err := h.channelService.Playout(ctx, id)
	if err != nil {
		h.channelError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, toChannelResponse(ch, p.ID))
}

// AssignSchedule handles PUT /api/channels/:id/schedule
func (h *ChannelHandler) AssignSchedule(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	var req AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	p, err := h.channelService.AssignSchedule(ctx, id, req.ProgramScheduleID)
	if err != nil {
		if channel.IsScheduleNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Program schedule not found",
			})
			return
		}
		h.channelError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeleteChannel handles DELETE /api/channels/:id
func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.channelService.DeleteChannel(ctx, id); err != nil {
		h.channelError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Channel deleted successfully",
	})
}

// NowPlaying handles GET /api/channels/:id/now
func (h *ChannelHandler) NowPlaying(c *gin.Context) {
	id, ok := parseID(c, "id", "channel")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	position, err := h.timelineService.GetCurrentPosition(ctx, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, position)
	case timeline.IsOffAir(err):
		c.JSON(http.StatusOK, gin.H{"state": "off_air"})
	case timeline.IsNotGenerated(err):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "not_generated",
			Message: "No timeline has been generated for the current time",
		})
	default:
		h.channelError(c, err, id)
	}
}

func (h *ChannelHandler) channelError(c *gin.Context, err error, id uint) {
	if channel.IsChannelNotFound(err) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Channel not found",
		})
		return
	}

	logger.Log.Error().
		Err(err).
		Uint("channel_id", id).
		Str("path", c.FullPath()).
		Msg("Channel request failed")

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "query_failed",
		Message: "Failed to process channel request",
	})
}

// SetupChannelRoutes registers channel-related routes
func SetupChannelRoutes(apiGroup *gin.RouterGroup, channelService *channel.ChannelService, timelineService *timeline.TimelineService) {
	handler := NewChannelHandler(channelService, timelineService)

	apiGroup.POST("/channels", handler.CreateChannel)
	apiGroup.GET("/channels", handler.ListChannels)
	apiGroup.GET("/channels/:id", handler.GetChannel)
	apiGroup.DELETE("/channels/:id", handler.DeleteChannel)
	apiGroup.PUT("/channels/:id/schedule", handler.AssignSchedule)
	apiGroup.GET("/channels/:id/now", handler.NowPlaying)
}
