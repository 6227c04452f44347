package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"team-chat-service/internal/models"
	"team-chat-service/internal/observability"
	"team-chat-service/internal/repositories"
	"team-chat-service/internal/telemetry"
)

// ChannelHandler manages channel and membership endpoints.
type ChannelHandler struct {
	channelRepo    repositories.ChannelRepository
	membershipRepo repositories.MembershipRepository
	audit          *telemetry.AuditEmitter
}

// NewChannelHandler constructs a ChannelHandler.
func NewChannelHandler(channelRepo repositories.ChannelRepository, membershipRepo repositories.MembershipRepository, audit *telemetry.AuditEmitter) *ChannelHandler {
	return &ChannelHandler{
		channelRepo:    channelRepo,
		membershipRepo: membershipRepo,
		audit:          audit,
	}
}

// CreateChannel handles POST /channels. The caller becomes the owner.
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		IsPrivate   bool    `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channelRepo.CreateChannel(c.Request.Context(), repositories.CreateChannelParams{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatorID:   c.GetInt("userID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Channel created")
	c.JSON(http.StatusCreated, channel)
}

// UpdateChannel handles PATCH /channels/:channel_id. Only supplied fields
// change.
func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	channelID, err := strconv.Atoi(c.Param("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var params repositories.UpdateChannelParams
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &params.Name); err != nil || params.Name == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
			return
		}
	}
	if v, ok := raw["description"]; ok {
		params.HasDescription = true
		if err := json.Unmarshal(v, &params.Description); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid description"})
			return
		}
	}
	if v, ok := raw["is_private"]; ok {
		if err := json.Unmarshal(v, &params.IsPrivate); err != nil || params.IsPrivate == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_private"})
			return
		}
	}

	channel, err := h.channelRepo.UpdateChannel(c.Request.Context(), channelID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// GetChannel handles GET /channels/:channel_id.
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	channelID, err := strconv.Atoi(c.Param("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.channelRepo.GetChannel(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// ListChannels handles GET /channels. Without user_id only public channels
// are returned; with user_id and include_private the user's private channels
// join the result.
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	var userID *int
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		userID = &parsed
	}
	includePrivate := c.Query("include_private") == "true"

	channels, err := h.channelRepo.ListChannels(c.Request.Context(), userID, includePrivate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// JoinChannel handles POST /channels/:channel_id/members. The joining user
// defaults to the caller; the role defaults to member.
func (h *ChannelHandler) JoinChannel(c *gin.Context) {
	channelID, err := strconv.Atoi(c.Param("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	var req struct {
		UserID *int                   `json:"user_id"`
		Role   *models.MembershipRole `json:"role"`
	}
	// The body is optional: an empty body joins the caller as a member.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	userID := c.GetInt("userID")
	if req.UserID != nil {
		userID = *req.UserID
	}
	role := models.MembershipRole("")
	if req.Role != nil {
		if !req.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		role = *req.Role
	}

	membership, err := h.membershipRepo.Join(c.Request.Context(), channelID, userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Channel joined")
	c.JSON(http.StatusCreated, membership)
}

// LeaveChannel handles DELETE /channels/:channel_id/members/me. The response
// does not distinguish ownership transfer from channel deletion.
func (h *ChannelHandler) LeaveChannel(c *gin.Context) {
	channelID, err := strconv.Atoi(c.Param("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	ctx, span := otel.Tracer("team-chat-service/membership").Start(c.Request.Context(), "membership.leave")
	result, err := h.membershipRepo.Leave(ctx, channelID, c.GetInt("userID"))
	span.End()
	if err != nil {
		respondError(c, err)
		return
	}

	switch {
	case result.ChannelDeleted:
		observability.IncChannelAutoDeleted()
		h.emitAudit(c, "INFO", "Channel deleted with last member")
	case result.PromotedUserID != nil:
		observability.IncOwnershipSuccession()
		h.emitAudit(c, "INFO", "Channel ownership transferred")
	default:
		h.emitAudit(c, "INFO", "Channel left")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetChannelMembers handles GET /channels/:channel_id/members, ordered by
// join time.
func (h *ChannelHandler) GetChannelMembers(c *gin.Context) {
	channelID, err := strconv.Atoi(c.Param("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	members, err := h.membershipRepo.ListMembers(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *ChannelHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
