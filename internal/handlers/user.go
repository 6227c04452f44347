package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"team-chat-service/internal/auth"
	"team-chat-service/internal/models"
	"team-chat-service/internal/presence"
	"team-chat-service/internal/repositories"
	"team-chat-service/internal/telemetry"
)

// UserHandler manages account and presence endpoints.
type UserHandler struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	presence presence.Tracker
	audit    *telemetry.AuditEmitter
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository, tokens *auth.TokenManager, tracker presence.Tracker, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		tokens:   tokens,
		presence: tracker,
		audit:    audit,
	}
}

// Register handles POST /auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username    string  `json:"username" binding:"required"`
		Email       string  `json:"email" binding:"required,email"`
		Password    string  `json:"password" binding:"required,min=8"`
		DisplayName *string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.Register(c.Request.Context(), repositories.RegisterUserParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "User registered")
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login. A successful login always transitions the
// user to online.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.emitAudit(c, "ERROR", "Login failed")
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.presence.Set(c.Request.Context(), user.ID, models.StatusOnline)
	h.emitAudit(c, "INFO", "User logged in")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// UpdateProfile handles PATCH /users/:user_id. Only fields present in the
// body change; an explicit null clears display_name or avatar_url.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var params repositories.UpdateUserParams
	if v, ok := raw["display_name"]; ok {
		params.HasDisplayName = true
		if err := json.Unmarshal(v, &params.DisplayName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display_name"})
			return
		}
	}
	if v, ok := raw["avatar_url"]; ok {
		params.HasAvatarURL = true
		if err := json.Unmarshal(v, &params.AvatarURL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avatar_url"})
			return
		}
	}
	if v, ok := raw["status"]; ok {
		var status *models.PresenceStatus
		if err := json.Unmarshal(v, &status); err != nil || status == nil || !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		params.HasStatus = true
		params.Status = status
	}

	user, err := h.userRepo.UpdateProfile(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	if params.HasStatus {
		h.presence.Set(c.Request.Context(), user.ID, user.Status)
	}
	c.JSON(http.StatusOK, user)
}

// GetUser handles GET /users/:user_id. Unknown ids are an empty result, not
// an error.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListOnline handles GET /users/online.
func (h *UserHandler) ListOnline(c *gin.Context) {
	users, err := h.userRepo.ListOnline(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
