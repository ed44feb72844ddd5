package notifications

import "github.com/envboard/envboard/pkg/storage"

// Migrations returns the schema migrations owned by the notifications
// package. Versions continue from the activities package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     5,
			Description: "create notifications table",
			SQL: `
				CREATE TABLE IF NOT EXISTS notifications (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					message TEXT NOT NULL,
					category VARCHAR(64) NOT NULL,
					link TEXT NOT NULL DEFAULT '',
					activity_id BIGINT REFERENCES activities(id) ON DELETE SET NULL,
					environment_id BIGINT REFERENCES environments(id) ON DELETE SET NULL,
					read BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_notifications_user_unread
					ON notifications (user_id, created_at DESC) WHERE NOT read;
			`,
		},
	}
}
