package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"team-chat-service/internal/models"
)

const attachmentColumns = `id, message_id, filename, original_filename, file_size, mime_type, file_url, created_at`

// CreateAttachmentParams carries attachment metadata; the file itself was
// stored out-of-band before this record exists.
type CreateAttachmentParams struct {
	MessageID        int
	Filename         string
	OriginalFilename string
	FileSize         int64
	MimeType         string
	FileURL          string
}

// AttachmentRepository manages file-attachment metadata rows.
type AttachmentRepository interface {
	CreateAttachment(ctx context.Context, params CreateAttachmentParams) (models.FileAttachment, error)
	ListByMessage(ctx context.Context, messageID int) ([]models.FileAttachment, error)
}

// AttachmentRepo is a sqlx implementation of AttachmentRepository.
type AttachmentRepo struct {
	db *sqlx.DB
}

// NewAttachmentRepo constructs an AttachmentRepo.
func NewAttachmentRepo(db *sqlx.DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

// CreateAttachment inserts the metadata row. A foreign-key violation against
// a missing message is surfaced from the store untranslated.
func (r *AttachmentRepo) CreateAttachment(ctx context.Context, params CreateAttachmentParams) (models.FileAttachment, error) {
	var attachment models.FileAttachment
	err := r.db.GetContext(ctx, &attachment, `INSERT INTO file_attachments
        (message_id, filename, original_filename, file_size, mime_type, file_url)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+attachmentColumns,
		params.MessageID, params.Filename, params.OriginalFilename,
		params.FileSize, params.MimeType, params.FileURL)
	return attachment, err
}

// ListByMessage returns the attachments of a message, empty when the message
// is unknown or has none.
func (r *AttachmentRepo) ListByMessage(ctx context.Context, messageID int) ([]models.FileAttachment, error) {
	attachments := []models.FileAttachment{}
	err := r.db.SelectContext(ctx, &attachments, `SELECT `+attachmentColumns+` FROM file_attachments
        WHERE message_id=$1 ORDER BY created_at ASC, id ASC`, messageID)
	return attachments, err
}
