package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"team-chat-service/internal/models"
	"team-chat-service/internal/observability"
	"team-chat-service/internal/repositories"
	"team-chat-service/internal/telemetry"
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 100
)

// MessageHandler manages message lifecycle and search endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, audit: audit}
}

// CreateMessage handles POST /messages. The caller is the sender.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req struct {
		Content                  string              `json:"content" binding:"required"`
		MessageType              *models.MessageType `json:"message_type"`
		ChannelID                *int                `json:"channel_id"`
		DirectMessageRecipientID *int                `json:"direct_message_recipient_id"`
		ReplyToMessageID         *int                `json:"reply_to_message_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messageType := models.MessageTypeText
	if req.MessageType != nil {
		if !req.MessageType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message_type"})
			return
		}
		messageType = *req.MessageType
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), repositories.CreateMessageParams{
		Content:                  req.Content,
		MessageType:              messageType,
		SenderID:                 c.GetInt("userID"),
		ChannelID:                req.ChannelID,
		DirectMessageRecipientID: req.DirectMessageRecipientID,
		ReplyToMessageID:         req.ReplyToMessageID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if msg.ChannelID != nil {
		observability.IncMessageCreated("channel")
	} else {
		observability.IncMessageCreated("direct")
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages handles GET /messages, newest first, for exactly one of a
// channel or a DM counterpart.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	channelID, ok := optionalIntQuery(c, "channel_id")
	if !ok {
		return
	}
	recipientID, ok := optionalIntQuery(c, "direct_message_recipient_id")
	if !ok {
		return
	}

	if channelID != nil && recipientID != nil {
		respondError(c, repositories.ErrAmbiguousDestination)
		return
	}
	if channelID == nil && recipientID == nil {
		respondError(c, repositories.ErrMissingDestination)
		return
	}

	page := intQueryDefault(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := intQueryDefault(c, "limit", defaultMessagePageSize)
	if limit < 1 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}
	offset := (page - 1) * limit

	var msgs []models.Message
	var err error
	if channelID != nil {
		msgs, err = h.messageRepo.GetChannelMessages(c.Request.Context(), *channelID, limit, offset)
	} else {
		msgs, err = h.messageRepo.GetDirectMessages(c.Request.Context(), c.GetInt("userID"), *recipientID, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// UpdateMessage handles PATCH /messages/:message_id. Only the original
// sender may edit.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg.SenderID != c.GetInt("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender may edit a message"})
		return
	}

	updated, err := h.messageRepo.UpdateMessage(c.Request.Context(), messageID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMessage handles DELETE /messages/:message_id.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.messageRepo.DeleteMessage(c.Request.Context(), messageID, c.GetInt("userID")); err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Message deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SearchMessages handles GET /messages/search.
func (h *MessageHandler) SearchMessages(c *gin.Context) {
	channelID, ok := optionalIntQuery(c, "channel_id")
	if !ok {
		return
	}

	msgs, err := h.messageRepo.SearchMessages(c.Request.Context(), c.Query("q"), c.GetInt("userID"), channelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &parsed, true
}

func intQueryDefault(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
