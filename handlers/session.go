package handlers

import (
	"errors"
	"net/http"

	"schedulo/services/conversation"
	"schedulo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListSessionsHandler returns the ids of live sessions.
func (hb *HandlerBundle) ListSessionsHandler(c *gin.Context) {
	ids, err := hb.Conversation.ListSessions(c.Request.Context())
	if err != nil {
		utils.GetLogger().Error("Failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": ids, "count": len(ids)})
}

// GetSessionHandler returns one session's full state.
func (hb *HandlerBundle) GetSessionHandler(c *gin.Context) {
	id := c.Param("sessionID")

	sess, err := hb.Conversation.GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		utils.GetLogger().Error("Failed to fetch session",
			zap.String("sessionID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteSessionHandler ends a conversation and discards its state.
func (hb *HandlerBundle) DeleteSessionHandler(c *gin.Context) {
	id := c.Param("sessionID")

	if err := hb.Conversation.EndSession(c.Request.Context(), id); err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		utils.GetLogger().Error("Failed to delete session",
			zap.String("sessionID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted", "sessionId": id})
}
