package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"team-chat-service/internal/repositories"
)

// ConversationHandler manages direct-message conversation endpoints.
type ConversationHandler struct {
	conversationRepo repositories.ConversationRepository
}

// NewConversationHandler constructs a ConversationHandler.
func NewConversationHandler(conversationRepo repositories.ConversationRepository) *ConversationHandler {
	return &ConversationHandler{conversationRepo: conversationRepo}
}

// CreateConversation handles POST /conversations. Creation is idempotent:
// the existing conversation for the pair is returned regardless of argument
// order.
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req struct {
		User1ID int `json:"user1_id" binding:"required"`
		User2ID int `json:"user2_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.conversationRepo.GetOrCreate(c.Request.Context(), req.User1ID, req.User2ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// ListConversations handles GET /conversations for the caller.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	conversations, err := h.conversationRepo.ListForUser(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}
