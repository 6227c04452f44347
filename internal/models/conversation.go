package models

import "time"

// DirectMessageConversation identifies a DM thread by its unordered pair of
// participants. The stored column order is whichever order first created it;
// lookups match both orders.
type DirectMessageConversation struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
