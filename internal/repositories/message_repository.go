package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"team-chat-service/internal/models"
)

var (
	ErrMessageNotFound           = errors.New("message not found")
	ErrUnauthorized              = errors.New("not allowed to perform this action on the message")
	ErrSenderNotFound            = errors.New("sender not found")
	ErrMissingDestination        = errors.New("either channel_id or direct_message_recipient_id is required")
	ErrAmbiguousDestination      = errors.New("channel_id and direct_message_recipient_id are mutually exclusive")
	ErrNotChannelMember          = errors.New("sender is not a member of the channel")
	ErrRecipientNotFound         = errors.New("recipient not found")
	ErrSelfMessage               = errors.New("cannot send a direct message to yourself")
	ErrReplyTargetNotFound       = errors.New("reply target message not found")
	ErrReplyChannelMismatch      = errors.New("reply target belongs to a different channel")
	ErrReplyConversationMismatch = errors.New("reply target belongs to a different conversation")
)

const messageColumns = `id, content, message_type, sender_id, channel_id, direct_message_recipient_id, reply_to_message_id, edited_at, created_at, updated_at`

const searchResultLimit = 50

// CreateMessageParams carries the fields for message creation. Exactly one of
// ChannelID and DirectMessageRecipientID must be set.
type CreateMessageParams struct {
	Content                  string
	MessageType              models.MessageType
	SenderID                 int
	ChannelID                *int
	DirectMessageRecipientID *int
	ReplyToMessageID         *int
}

// MessageRepository defines message persistence and its authorization rules.
type MessageRepository interface {
	CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error)
	GetChannelMessages(ctx context.Context, channelID, limit, offset int) ([]models.Message, error)
	GetDirectMessages(ctx context.Context, userID, recipientID, limit, offset int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	UpdateMessage(ctx context.Context, messageID int, content string) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID, actingUserID int) error
	SearchMessages(ctx context.Context, query string, userID int, channelID *int) ([]models.Message, error)
}

// MessageRepo is a sqlx implementation of MessageRepository. Membership
// checks go through the membership repository.
type MessageRepo struct {
	db          *sqlx.DB
	memberships MembershipRepository
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB, memberships MembershipRepository) *MessageRepo {
	return &MessageRepo{db: db, memberships: memberships}
}

// CreateMessage validates addressing, membership and reply consistency, then
// inserts the message. Checks run in a fixed order; the first failure wins.
func (r *MessageRepo) CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, params.SenderID); err != nil {
		return models.Message{}, err
	}
	if !exists {
		return models.Message{}, fmt.Errorf("%w: id %d", ErrSenderNotFound, params.SenderID)
	}

	if params.ChannelID == nil && params.DirectMessageRecipientID == nil {
		return models.Message{}, ErrMissingDestination
	}
	if params.ChannelID != nil && params.DirectMessageRecipientID != nil {
		return models.Message{}, ErrAmbiguousDestination
	}

	if params.ChannelID != nil {
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM channels WHERE id=$1)`, *params.ChannelID); err != nil {
			return models.Message{}, err
		}
		if !exists {
			return models.Message{}, fmt.Errorf("%w: id %d", ErrChannelNotFound, *params.ChannelID)
		}
		member, err := r.memberships.IsMember(ctx, *params.ChannelID, params.SenderID)
		if err != nil {
			return models.Message{}, err
		}
		if !member {
			return models.Message{}, fmt.Errorf("%w: channel id %d", ErrNotChannelMember, *params.ChannelID)
		}
	}

	if params.DirectMessageRecipientID != nil {
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, *params.DirectMessageRecipientID); err != nil {
			return models.Message{}, err
		}
		if !exists {
			return models.Message{}, fmt.Errorf("%w: id %d", ErrRecipientNotFound, *params.DirectMessageRecipientID)
		}
		if *params.DirectMessageRecipientID == params.SenderID {
			return models.Message{}, ErrSelfMessage
		}
	}

	if params.ReplyToMessageID != nil {
		if err := r.validateReply(ctx, params); err != nil {
			return models.Message{}, err
		}
	}

	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `INSERT INTO messages
        (content, message_type, sender_id, channel_id, direct_message_recipient_id, reply_to_message_id)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+messageColumns,
		params.Content, params.MessageType, params.SenderID,
		params.ChannelID, params.DirectMessageRecipientID, params.ReplyToMessageID)
	return msg, err
}

func (r *MessageRepo) validateReply(ctx context.Context, params CreateMessageParams) error {
	var original models.Message
	err := r.db.GetContext(ctx, &original, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, *params.ReplyToMessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrReplyTargetNotFound, *params.ReplyToMessageID)
	}
	if err != nil {
		return err
	}

	if params.ChannelID != nil {
		if original.ChannelID == nil || *original.ChannelID != *params.ChannelID {
			return ErrReplyChannelMismatch
		}
		return nil
	}

	// DM reply: the original must involve the same two participants, in
	// either direction.
	if original.DirectMessageRecipientID == nil {
		return ErrReplyConversationMismatch
	}
	sameDirection := original.SenderID == params.SenderID && *original.DirectMessageRecipientID == *params.DirectMessageRecipientID
	reversed := original.SenderID == *params.DirectMessageRecipientID && *original.DirectMessageRecipientID == params.SenderID
	if !sameDirection && !reversed {
		return ErrReplyConversationMismatch
	}
	return nil
}

// GetChannelMessages returns a page of channel messages, newest first.
func (r *MessageRepo) GetChannelMessages(ctx context.Context, channelID, limit, offset int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE channel_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		channelID, limit, offset)
	return msgs, err
}

// GetDirectMessages returns a page of DM messages between the two users in
// either direction, newest first.
func (r *MessageRepo) GetDirectMessages(ctx context.Context, userID, recipientID, limit, offset int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE channel_id IS NULL
          AND ((sender_id=$1 AND direct_message_recipient_id=$2)
            OR (sender_id=$2 AND direct_message_recipient_id=$1))
        ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		userID, recipientID, limit, offset)
	return msgs, err
}

// GetMessage fetches a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, fmt.Errorf("%w: id %d", ErrMessageNotFound, messageID)
	}
	return msg, err
}

// UpdateMessage replaces the content and stamps edited_at. Who may edit is
// enforced by the caller.
func (r *MessageRepo) UpdateMessage(ctx context.Context, messageID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `UPDATE messages SET content=$2, edited_at=NOW(), updated_at=NOW()
        WHERE id=$1 RETURNING `+messageColumns, messageID, content)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, fmt.Errorf("%w: id %d", ErrMessageNotFound, messageID)
	}
	return msg, err
}

// canDeleteMessage decides whether the acting user may delete the message.
// The sender always may; a channel owner or admin may delete anyone's message
// in their channel; DM messages are sender-delete-only. role and isMember
// describe the acting user's standing in the message's channel and are
// ignored for DM messages.
func canDeleteMessage(msg models.Message, actingUserID int, role models.MembershipRole, isMember bool) bool {
	if msg.SenderID == actingUserID {
		return true
	}
	if msg.ChannelID == nil {
		return false
	}
	if !isMember {
		return false
	}
	return role == models.RoleOwner || role == models.RoleAdmin
}

// DeleteMessage removes a message when canDeleteMessage allows it.
// Attachments cascade with the row.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID, actingUserID int) error {
	msg, err := r.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}

	var role models.MembershipRole
	isMember := false
	if msg.SenderID != actingUserID && msg.ChannelID != nil {
		err := r.db.GetContext(ctx, &role, `SELECT role FROM channel_memberships WHERE channel_id=$1 AND user_id=$2`, *msg.ChannelID, actingUserID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			isMember = true
		}
	}
	if !canDeleteMessage(msg, actingUserID, role, isMember) {
		return fmt.Errorf("%w: id %d", ErrUnauthorized, messageID)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", ErrMessageNotFound, messageID)
	}
	return nil
}

// SearchMessages scans messages visible to the user for a case-insensitive
// substring match, capped at 50 results ordered oldest first. A blank query,
// or a channel scope the user cannot access, returns an empty list.
func (r *MessageRepo) SearchMessages(ctx context.Context, query string, userID int, channelID *int) ([]models.Message, error) {
	pattern, ok := searchPattern(query)
	if !ok {
		return []models.Message{}, nil
	}

	msgs := []models.Message{}
	if channelID != nil {
		member, err := r.memberships.IsMember(ctx, *channelID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return msgs, nil
		}
		err = r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
            WHERE channel_id=$1 AND content ILIKE $2
            ORDER BY created_at ASC, id ASC LIMIT $3`,
			*channelID, pattern, searchResultLimit)
		return msgs, err
	}

	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE content ILIKE $2
          AND (channel_id IN (SELECT channel_id FROM channel_memberships WHERE user_id=$1)
            OR (channel_id IS NULL AND (sender_id=$1 OR direct_message_recipient_id=$1)))
        ORDER BY created_at ASC, id ASC LIMIT $3`,
		userID, pattern, searchResultLimit)
	return msgs, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// searchPattern builds the ILIKE pattern for a search query. Whitespace-only
// queries yield no pattern; any other query is matched verbatim, interior and
// edge whitespace included.
func searchPattern(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}
	return "%" + escapeLike(query) + "%", true
}
