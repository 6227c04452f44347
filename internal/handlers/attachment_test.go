package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"team-chat-service/internal/mocks"
	"team-chat-service/internal/models"
	"team-chat-service/internal/repositories"
)

func setupAttachmentRouter(handler *AttachmentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/messages/:message_id/attachments", handler.CreateAttachment)
	r.GET("/messages/:message_id/attachments", handler.GetAttachments)
	return r
}

const attachmentBody = `{"filename":"a1b2.pdf","original_filename":"notes.pdf","file_size":2048,"mime_type":"application/pdf","file_url":"https://files.example.com/a1b2.pdf"}`

func TestCreateAttachmentSuccess(t *testing.T) {
	attachmentRepo := new(mocks.AttachmentRepositoryMock)
	handler := NewAttachmentHandler(attachmentRepo)
	router := setupAttachmentRouter(handler)

	attachmentRepo.On("CreateAttachment", mock.Anything, repositories.CreateAttachmentParams{
		MessageID:        3,
		Filename:         "a1b2.pdf",
		OriginalFilename: "notes.pdf",
		FileSize:         2048,
		MimeType:         "application/pdf",
		FileURL:          "https://files.example.com/a1b2.pdf",
	}).Return(models.FileAttachment{ID: 1, MessageID: 3, Filename: "a1b2.pdf"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/3/attachments", bytes.NewBufferString(attachmentBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	attachmentRepo.AssertExpectations(t)
}

func TestCreateAttachmentMissingField(t *testing.T) {
	handler := NewAttachmentHandler(new(mocks.AttachmentRepositoryMock))
	router := setupAttachmentRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages/3/attachments", bytes.NewBufferString(`{"filename":"a1b2.pdf"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// A dangling message id surfaces as the store's integrity error, not as a
// not-found.
func TestCreateAttachmentUnknownMessage(t *testing.T) {
	attachmentRepo := new(mocks.AttachmentRepositoryMock)
	handler := NewAttachmentHandler(attachmentRepo)
	router := setupAttachmentRouter(handler)

	fkErr := &pq.Error{Code: "23503", Message: "insert or update violates foreign key constraint"}
	attachmentRepo.On("CreateAttachment", mock.Anything, mock.Anything).
		Return(models.FileAttachment{}, fkErr).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/404/attachments", bytes.NewBufferString(attachmentBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	attachmentRepo.AssertExpectations(t)
}

func TestGetAttachmentsEmptyList(t *testing.T) {
	attachmentRepo := new(mocks.AttachmentRepositoryMock)
	handler := NewAttachmentHandler(attachmentRepo)
	router := setupAttachmentRouter(handler)

	attachmentRepo.On("ListByMessage", mock.Anything, 3).
		Return([]models.FileAttachment{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/3/attachments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.JSONEq(t, `[]`, string(body["attachments"]))
	attachmentRepo.AssertExpectations(t)
}

func TestGetAttachmentsInvalidID(t *testing.T) {
	handler := NewAttachmentHandler(new(mocks.AttachmentRepositoryMock))
	router := setupAttachmentRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/messages/bad/attachments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
