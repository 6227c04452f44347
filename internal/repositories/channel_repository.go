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
	ErrChannelNotFound = errors.New("channel not found")
	ErrCreatorNotFound = errors.New("creator not found")
)

const channelColumns = `id, name, description, is_private, created_by, created_at, updated_at`

// CreateChannelParams carries the fields required to create a channel.
type CreateChannelParams struct {
	Name        string
	Description *string
	IsPrivate   bool
	CreatorID   int
}

// UpdateChannelParams is a partial channel update.
type UpdateChannelParams struct {
	Name           *string
	Description    *string
	HasDescription bool
	IsPrivate      *bool
}

// ChannelRepository abstracts channel persistence.
type ChannelRepository interface {
	CreateChannel(ctx context.Context, params CreateChannelParams) (models.Channel, error)
	UpdateChannel(ctx context.Context, channelID int, params UpdateChannelParams) (models.Channel, error)
	ListChannels(ctx context.Context, userID *int, includePrivate bool) ([]models.Channel, error)
	GetChannel(ctx context.Context, channelID int) (models.Channel, error)
}

// ChannelRepo is a sqlx implementation of ChannelRepository.
type ChannelRepo struct {
	db *sqlx.DB
}

// NewChannelRepo constructs a ChannelRepo.
func NewChannelRepo(db *sqlx.DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

// CreateChannel inserts the channel and its owner membership atomically.
// Either both rows persist or neither does.
func (r *ChannelRepo) CreateChannel(ctx context.Context, params CreateChannelParams) (models.Channel, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, params.CreatorID); err != nil {
		return models.Channel{}, err
	}
	if !exists {
		return models.Channel{}, fmt.Errorf("%w: id %d", ErrCreatorNotFound, params.CreatorID)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Channel{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var channel models.Channel
	if err = tx.GetContext(ctx, &channel, `INSERT INTO channels (name, description, is_private, created_by)
        VALUES ($1, $2, $3, $4) RETURNING `+channelColumns,
		params.Name, params.Description, params.IsPrivate, params.CreatorID); err != nil {
		return models.Channel{}, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO channel_memberships (channel_id, user_id, role)
        VALUES ($1, $2, 'owner')`, channel.ID, params.CreatorID); err != nil {
		return models.Channel{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

// UpdateChannel applies a partial update; updated_at always refreshes.
func (r *ChannelRepo) UpdateChannel(ctx context.Context, channelID int, params UpdateChannelParams) (models.Channel, error) {
	set := []string{"updated_at=NOW()"}
	args := []any{channelID}

	if params.Name != nil {
		args = append(args, *params.Name)
		set = append(set, fmt.Sprintf("name=$%d", len(args)))
	}
	if params.HasDescription {
		args = append(args, params.Description)
		set = append(set, fmt.Sprintf("description=$%d", len(args)))
	}
	if params.IsPrivate != nil {
		args = append(args, *params.IsPrivate)
		set = append(set, fmt.Sprintf("is_private=$%d", len(args)))
	}

	var channel models.Channel
	query := `UPDATE channels SET ` + strings.Join(set, ", ") + ` WHERE id=$1 RETURNING ` + channelColumns
	err := r.db.GetContext(ctx, &channel, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, fmt.Errorf("%w: id %d", ErrChannelNotFound, channelID)
	}
	return channel, err
}

// ListChannels returns public channels, or the union of public channels and
// the user's private channels when includePrivate is set. A user holding
// multiple membership rows in one channel still yields a single entry.
func (r *ChannelRepo) ListChannels(ctx context.Context, userID *int, includePrivate bool) ([]models.Channel, error) {
	var channels []models.Channel
	if userID == nil || !includePrivate {
		err := r.db.SelectContext(ctx, &channels, `SELECT `+channelColumns+` FROM channels
            WHERE is_private=FALSE ORDER BY created_at DESC, id DESC`)
		return channels, err
	}

	err := r.db.SelectContext(ctx, &channels, `SELECT DISTINCT c.id, c.name, c.description, c.is_private, c.created_by, c.created_at, c.updated_at
        FROM channels c
        LEFT JOIN channel_memberships m ON m.channel_id = c.id AND m.user_id=$1
        WHERE c.is_private=FALSE OR m.id IS NOT NULL
        ORDER BY c.created_at DESC, c.id DESC`, *userID)
	return channels, err
}

// GetChannel fetches a single channel.
func (r *ChannelRepo) GetChannel(ctx context.Context, channelID int) (models.Channel, error) {
	var channel models.Channel
	err := r.db.GetContext(ctx, &channel, `SELECT `+channelColumns+` FROM channels WHERE id=$1`, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, fmt.Errorf("%w: id %d", ErrChannelNotFound, channelID)
	}
	return channel, err
}
