package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"team-chat-service/internal/repositories"
)

// AttachmentHandler manages file-attachment metadata endpoints. The file
// bytes are stored out-of-band; only resolved metadata arrives here.
type AttachmentHandler struct {
	attachmentRepo repositories.AttachmentRepository
}

// NewAttachmentHandler constructs an AttachmentHandler.
func NewAttachmentHandler(attachmentRepo repositories.AttachmentRepository) *AttachmentHandler {
	return &AttachmentHandler{attachmentRepo: attachmentRepo}
}

// CreateAttachment handles POST /messages/:message_id/attachments.
func (h *AttachmentHandler) CreateAttachment(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		Filename         string `json:"filename" binding:"required"`
		OriginalFilename string `json:"original_filename" binding:"required"`
		FileSize         int64  `json:"file_size" binding:"required"`
		MimeType         string `json:"mime_type" binding:"required"`
		FileURL          string `json:"file_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attachment, err := h.attachmentRepo.CreateAttachment(c.Request.Context(), repositories.CreateAttachmentParams{
		MessageID:        messageID,
		Filename:         req.Filename,
		OriginalFilename: req.OriginalFilename,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
		FileURL:          req.FileURL,
	})
	if err != nil {
		// Integrity failures from the store are passed through, not
		// translated into a not-found.
		if repositories.IsForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// GetAttachments handles GET /messages/:message_id/attachments, empty when
// the message is unknown or bare.
func (h *AttachmentHandler) GetAttachments(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	attachments, err := h.attachmentRepo.ListByMessage(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load attachments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}
