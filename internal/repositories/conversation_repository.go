package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"team-chat-service/internal/models"
)

var ErrUsersNotFound = errors.New("one or both users not found")

const conversationColumns = `id, user1_id, user2_id, created_at, updated_at`

// ConversationRepository manages direct-message conversation identity.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, user1ID, user2ID int) (models.DirectMessageConversation, error)
	ListForUser(ctx context.Context, userID int) ([]models.DirectMessageConversation, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreate returns the conversation for the unordered pair, creating it if
// absent. An existing row is returned unchanged regardless of argument order;
// a new row stores the caller-supplied order. Self-pairs are allowed.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, user1ID, user2ID int) (models.DirectMessageConversation, error) {
	required := 2
	if user1ID == user2ID {
		required = 1
	}
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE id IN ($1, $2)`, user1ID, user2ID); err != nil {
		return models.DirectMessageConversation{}, err
	}
	if count < required {
		return models.DirectMessageConversation{}, ErrUsersNotFound
	}

	conv, err := r.findPair(ctx, user1ID, user2ID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.DirectMessageConversation{}, err
	}

	err = r.db.GetContext(ctx, &conv, `INSERT INTO direct_message_conversations (user1_id, user2_id)
        VALUES ($1, $2) RETURNING `+conversationColumns, user1ID, user2ID)
	if isUniqueViolation(err) {
		// Lost the race to a concurrent creator; the pair index guarantees
		// the existing row is ours.
		return r.findPair(ctx, user1ID, user2ID)
	}
	return conv, err
}

func (r *ConversationRepo) findPair(ctx context.Context, user1ID, user2ID int) (models.DirectMessageConversation, error) {
	var conv models.DirectMessageConversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM direct_message_conversations
        WHERE (user1_id=$1 AND user2_id=$2) OR (user1_id=$2 AND user2_id=$1)`, user1ID, user2ID)
	return conv, err
}

// ListForUser returns every conversation the user participates in. Unknown
// users yield an empty list, not an error.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int) ([]models.DirectMessageConversation, error) {
	conversations := []models.DirectMessageConversation{}
	err := r.db.SelectContext(ctx, &conversations, `SELECT `+conversationColumns+` FROM direct_message_conversations
        WHERE user1_id=$1 OR user2_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	return conversations, err
}
