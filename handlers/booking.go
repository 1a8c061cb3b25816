package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"schedulo/config"
	"schedulo/models"
	"schedulo/services/availability"
	"schedulo/services/calendar"
	"schedulo/services/conversation"
	"schedulo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DirectBookingHandler books an event without a conversation. The same
// conflict checks apply as on the conversational path.
func (hb *HandlerBundle) DirectBookingHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.DirectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !req.End.After(req.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}

	eventID, err := hb.Calendar.CreateEvent(c.Request.Context(), models.EventInput{
		Title:         req.Title,
		Description:   req.Description,
		Start:         req.Start,
		End:           req.End,
		AttendeeEmail: req.AttendeeEmail,
	})
	if err != nil {
		if errors.Is(err, calendar.ErrConflict) {
			c.JSON(http.StatusConflict, models.DirectBookingResponse{
				Success: false,
				Message: "requested time overlaps an existing event",
			})
			return
		}
		logger.Error("Direct booking failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, models.DirectBookingResponse{
			Success: false,
			Message: "calendar is unavailable, try again shortly",
		})
		return
	}

	c.JSON(http.StatusOK, models.DirectBookingResponse{
		Success: true,
		EventID: eventID,
		Message: "booking created",
	})
}

// AvailabilityHandler resolves open slots over a date range. When a
// sessionId is supplied the result also replaces that session's
// candidate list.
func (hb *HandlerBundle) AvailabilityHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be after startDate"})
		return
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = config.AppConfig.DefaultDurationMin
	}

	slots, err := hb.Resolver.Resolve(c.Request.Context(), availability.Query{
		From:        req.StartDate,
		Until:       req.EndDate,
		DurationMin: duration,
	})
	if err != nil {
		logger.Error("Availability resolution failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar is unavailable, try again shortly"})
		return
	}

	if req.SessionID != "" {
		if err := hb.Conversation.RefreshCandidates(c.Request.Context(), req.SessionID, slots); err != nil {
			if errors.Is(err, conversation.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			logger.Warn("Failed to refresh session candidates",
				zap.String("sessionID", req.SessionID), zap.Error(err))
		}
	}

	message := "no available slots in the requested range"
	if len(slots) > 0 {
		message = "found " + strconv.Itoa(len(slots)) + " available slots"
	}
	c.JSON(http.StatusOK, models.AvailabilityResponse{
		AvailableSlots: slots,
		Message:        message,
	})
}

// EventsHandler lists upcoming calendar events.
func (hb *HandlerBundle) EventsHandler(c *gin.Context) {
	logger := utils.GetLogger()

	max := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		max = parsed
	}

	events, err := hb.Calendar.UpcomingEvents(c.Request.Context(), time.Now(), max)
	if err != nil {
		logger.Error("Failed to list events", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar is unavailable, try again shortly"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
