package handlers

import (
	"net/http"
	"time"

	"schedulo/models"
	"schedulo/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatHandler processes one conversational turn. A missing sessionId
// starts a fresh conversation.
func (hb *HandlerBundle) ChatHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	resp, err := hb.Conversation.HandleTurn(c.Request.Context(), sessionID, req.Message, time.Now())
	if err != nil {
		logger.Error("Failed to process chat turn",
			zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
