package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            display_name TEXT,
            avatar_url TEXT,
            status TEXT NOT NULL DEFAULT 'offline'
                CHECK (status IN ('online', 'away', 'busy', 'offline')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS channels (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT,
            is_private BOOLEAN NOT NULL DEFAULT FALSE,
            created_by INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS channel_memberships (
            id SERIAL PRIMARY KEY,
            channel_id INT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
            user_id INT NOT NULL REFERENCES users(id),
            role TEXT NOT NULL DEFAULT 'member'
                CHECK (role IN ('owner', 'admin', 'member')),
            joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(channel_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS direct_message_conversations (
            id SERIAL PRIMARY KEY,
            user1_id INT NOT NULL REFERENCES users(id),
            user2_id INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// The unordered pair is unique: (a,b) and (b,a) hit the same index key.
		`CREATE UNIQUE INDEX IF NOT EXISTS direct_message_conversations_pair_idx
            ON direct_message_conversations (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id));`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            content TEXT NOT NULL,
            message_type TEXT NOT NULL DEFAULT 'text'
                CHECK (message_type IN ('text', 'file', 'system')),
            sender_id INT NOT NULL REFERENCES users(id),
            channel_id INT REFERENCES channels(id) ON DELETE CASCADE,
            direct_message_recipient_id INT REFERENCES users(id),
            reply_to_message_id INT REFERENCES messages(id) ON DELETE SET NULL,
            edited_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK ((channel_id IS NULL) <> (direct_message_recipient_id IS NULL))
        );`,
		`CREATE TABLE IF NOT EXISTS file_attachments (
            id SERIAL PRIMARY KEY,
            message_id INT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
            filename TEXT NOT NULL,
            original_filename TEXT NOT NULL,
            file_size BIGINT NOT NULL,
            mime_type TEXT NOT NULL,
            file_url TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS messages_channel_created_idx ON messages (channel_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS channel_memberships_user_idx ON channel_memberships (user_id);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	zap.L().Info("database migrations applied")
	return nil
}
