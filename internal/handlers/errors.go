package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"team-chat-service/internal/repositories"
)

// statusFor maps repository sentinel errors onto HTTP statuses: not-found
// 404, conflicts 409, authorization failures 403, validation failures 400,
// credential failures 401. Anything unrecognized is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrChannelNotFound),
		errors.Is(err, repositories.ErrCreatorNotFound),
		errors.Is(err, repositories.ErrMessageNotFound),
		errors.Is(err, repositories.ErrSenderNotFound),
		errors.Is(err, repositories.ErrRecipientNotFound),
		errors.Is(err, repositories.ErrReplyTargetNotFound),
		errors.Is(err, repositories.ErrUsersNotFound),
		errors.Is(err, repositories.ErrNotAMember):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrDuplicateEmail),
		errors.Is(err, repositories.ErrDuplicateUsername),
		errors.Is(err, repositories.ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, repositories.ErrUnauthorized),
		errors.Is(err, repositories.ErrNotChannelMember):
		return http.StatusForbidden
	case errors.Is(err, repositories.ErrMissingDestination),
		errors.Is(err, repositories.ErrAmbiguousDestination),
		errors.Is(err, repositories.ErrSelfMessage),
		errors.Is(err, repositories.ErrReplyChannelMismatch),
		errors.Is(err, repositories.ErrReplyConversationMismatch):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes the mapped status with the error's own detail text.
// Internal errors get a generic body so store details never leak.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
