package handler

import (
	"net/http"
	"strings"

	"padelchat/internal/chat"
	"padelchat/internal/logger"
	"padelchat/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler exposes the conversation over HTTP
type ChatHandler struct {
	conv            *chat.Conversation
	defaultUserName string
	log             logger.Logger
}

// ChatResponse is a reply plus the session it belongs to
type ChatResponse struct {
	SessionID string `json:"session_id"`
	*chat.Reply
}

// NewChatHandler creates a new chat handler
func NewChatHandler(conv *chat.Conversation, defaultUserName string, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		conv:            conv,
		defaultUserName: defaultUserName,
		log:             log,
	}
}

// Register mounts the chat routes on the /api/v1 group
func (h *ChatHandler) Register(v1 *gin.RouterGroup) {
	v1.POST("/chat", h.Chat)
	v1.DELETE("/chat/:session_id", h.Reset)
}

// Chat handles POST /api/v1/chat. A request without session_id starts a new
// session; its id is returned with the reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		userName = h.defaultUserName
	}

	reply := h.conv.Submit(c.Request.Context(), sessionID, req.Message, userName)
	c.JSON(http.StatusOK, ChatResponse{SessionID: sessionID, Reply: reply})
}

// Reset handles DELETE /api/v1/chat/:session_id
func (h *ChatHandler) Reset(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.conv.Reset(c.Request.Context(), sessionID); err != nil {
		h.log.WithError(err).Error("reset session failed", map[string]interface{}{"session_id": sessionID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "reset": true})
}
