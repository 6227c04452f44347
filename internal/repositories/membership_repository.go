package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"team-chat-service/internal/models"
)

var (
	ErrAlreadyMember = errors.New("user is already a member of the channel")
	ErrNotAMember    = errors.New("user is not a member of the channel")
)

const membershipColumns = `id, channel_id, user_id, role, joined_at`

// LeaveResult describes what a leave operation did. Callers must not branch
// on it for success handling; it exists for audit logging.
type LeaveResult struct {
	ChannelDeleted   bool
	PromotedUserID   *int
	PromotedFromRole models.MembershipRole
}

// MembershipRepository manages channel membership rows and the ownership
// lifecycle.
type MembershipRepository interface {
	Join(ctx context.Context, channelID, userID int, role models.MembershipRole) (models.ChannelMembership, error)
	Leave(ctx context.Context, channelID, userID int) (LeaveResult, error)
	ListMembers(ctx context.Context, channelID int) ([]models.ChannelMembership, error)
	IsMember(ctx context.Context, channelID, userID int) (bool, error)
}

// MembershipRepo is a sqlx implementation of MembershipRepository. All
// mutations lock the channel row so that concurrent joins and leaves on the
// same channel serialize.
type MembershipRepo struct {
	db *sqlx.DB
}

// NewMembershipRepo constructs a MembershipRepo.
func NewMembershipRepo(db *sqlx.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

// Join adds a membership row. The role defaults to member when empty.
func (r *MembershipRepo) Join(ctx context.Context, channelID, userID int, role models.MembershipRole) (models.ChannelMembership, error) {
	if role == "" {
		role = models.RoleMember
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChannelMembership{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockChannel(ctx, tx, channelID); err != nil {
		return models.ChannelMembership{}, err
	}

	var exists bool
	if err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, userID); err != nil {
		return models.ChannelMembership{}, err
	}
	if !exists {
		err = fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
		return models.ChannelMembership{}, err
	}

	if err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM channel_memberships WHERE channel_id=$1 AND user_id=$2)`, channelID, userID); err != nil {
		return models.ChannelMembership{}, err
	}
	if exists {
		err = ErrAlreadyMember
		return models.ChannelMembership{}, err
	}

	var membership models.ChannelMembership
	err = tx.GetContext(ctx, &membership, `INSERT INTO channel_memberships (channel_id, user_id, role)
        VALUES ($1, $2, $3) RETURNING `+membershipColumns, channelID, userID, role)
	if isUniqueViolation(err) {
		err = ErrAlreadyMember
		return models.ChannelMembership{}, err
	}
	if err != nil {
		return models.ChannelMembership{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.ChannelMembership{}, err
	}
	return membership, nil
}

// Leave removes the user's membership. When the departing member owns the
// channel, ownership succeeds to the remaining admin or member chosen by
// pickSuccessor; when nobody remains, the channel itself is deleted and its
// memberships, messages and attachments cascade with it.
func (r *MembershipRepo) Leave(ctx context.Context, channelID, userID int) (LeaveResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return LeaveResult{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// A missing channel implies a missing membership.
	if err = lockChannel(ctx, tx, channelID); err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			err = fmt.Errorf("%w: channel id %d", ErrNotAMember, channelID)
		}
		return LeaveResult{}, err
	}

	var members []models.ChannelMembership
	if err = tx.SelectContext(ctx, &members, `SELECT `+membershipColumns+` FROM channel_memberships
        WHERE channel_id=$1 ORDER BY joined_at ASC, id ASC FOR UPDATE`, channelID); err != nil {
		return LeaveResult{}, err
	}

	var departing *models.ChannelMembership
	remaining := make([]models.ChannelMembership, 0, len(members))
	for i := range members {
		if members[i].UserID == userID {
			departing = &members[i]
		} else {
			remaining = append(remaining, members[i])
		}
	}
	if departing == nil {
		err = fmt.Errorf("%w: channel id %d", ErrNotAMember, channelID)
		return LeaveResult{}, err
	}

	var result LeaveResult
	switch {
	case departing.Role != models.RoleOwner:
		if _, err = tx.ExecContext(ctx, `DELETE FROM channel_memberships WHERE id=$1`, departing.ID); err != nil {
			return LeaveResult{}, err
		}

	case len(remaining) == 0:
		// Sole member leaving: the channel goes with them, atomically.
		if _, err = tx.ExecContext(ctx, `DELETE FROM channels WHERE id=$1`, channelID); err != nil {
			return LeaveResult{}, err
		}
		result.ChannelDeleted = true

	default:
		successor := pickSuccessor(remaining)
		if _, err = tx.ExecContext(ctx, `UPDATE channel_memberships SET role='owner' WHERE id=$1`, successor.ID); err != nil {
			return LeaveResult{}, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM channel_memberships WHERE id=$1`, departing.ID); err != nil {
			return LeaveResult{}, err
		}
		result.PromotedUserID = &successor.UserID
		result.PromotedFromRole = successor.Role
	}

	if err = tx.Commit(); err != nil {
		return LeaveResult{}, err
	}
	return result, nil
}

// ListMembers returns all membership rows ordered by join time.
func (r *MembershipRepo) ListMembers(ctx context.Context, channelID int) ([]models.ChannelMembership, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM channels WHERE id=$1)`, channelID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrChannelNotFound, channelID)
	}

	members := []models.ChannelMembership{}
	err := r.db.SelectContext(ctx, &members, `SELECT `+membershipColumns+` FROM channel_memberships
        WHERE channel_id=$1 ORDER BY joined_at ASC, id ASC`, channelID)
	return members, err
}

// IsMember checks membership.
func (r *MembershipRepo) IsMember(ctx context.Context, channelID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM channel_memberships WHERE channel_id=$1 AND user_id=$2)`, channelID, userID)
	return exists, err
}

// lockChannel takes a row lock on the channel, serializing membership
// mutations per channel for the lifetime of the transaction.
func lockChannel(ctx context.Context, tx *sqlx.Tx, channelID int) error {
	var id int
	err := tx.GetContext(ctx, &id, `SELECT id FROM channels WHERE id=$1 FOR UPDATE`, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrChannelNotFound, channelID)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsForeignKeyViolation reports whether the error is a Postgres foreign-key
// violation. Attachment creation surfaces these untranslated.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
