package models

import "time"

// MessageType is the closed set of message kinds.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// Valid reports whether the type is one of the known message kinds.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// Message is addressed to exactly one of a channel or a DM recipient.
type Message struct {
	ID                       int         `db:"id" json:"id"`
	Content                  string      `db:"content" json:"content"`
	MessageType              MessageType `db:"message_type" json:"message_type"`
	SenderID                 int         `db:"sender_id" json:"sender_id"`
	ChannelID                *int        `db:"channel_id" json:"channel_id"`
	DirectMessageRecipientID *int        `db:"direct_message_recipient_id" json:"direct_message_recipient_id"`
	ReplyToMessageID         *int        `db:"reply_to_message_id" json:"reply_to_message_id"`
	EditedAt                 *time.Time  `db:"edited_at" json:"edited_at"`
	CreatedAt                time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time   `db:"updated_at" json:"updated_at"`
}

// FileAttachment is metadata for a file already stored out-of-band. It is
// owned by exactly one message and removed with it.
type FileAttachment struct {
	ID               int       `db:"id" json:"id"`
	MessageID        int       `db:"message_id" json:"message_id"`
	Filename         string    `db:"filename" json:"filename"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	FileSize         int64     `db:"file_size" json:"file_size"`
	MimeType         string    `db:"mime_type" json:"mime_type"`
	FileURL          string    `db:"file_url" json:"file_url"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
