package models

import "time"

// MembershipRole is the closed set of channel roles. Only the leave-channel
// succession path moves a membership into the owner role.
type MembershipRole string

const (
	RoleOwner  MembershipRole = "owner"
	RoleAdmin  MembershipRole = "admin"
	RoleMember MembershipRole = "member"
)

// Valid reports whether the role is one of the known membership roles.
func (r MembershipRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Channel represents a named group conversation space.
type Channel struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	IsPrivate   bool      `db:"is_private" json:"is_private"`
	CreatedBy   int       `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ChannelMembership binds a user to a channel with a role. At most one row
// exists per (channel, user) pair, and at most one owner per channel.
type ChannelMembership struct {
	ID        int            `db:"id" json:"id"`
	ChannelID int            `db:"channel_id" json:"channel_id"`
	UserID    int            `db:"user_id" json:"user_id"`
	Role      MembershipRole `db:"role" json:"role"`
	JoinedAt  time.Time      `db:"joined_at" json:"joined_at"`
}
