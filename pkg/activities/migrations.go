package activities

import "github.com/envboard/envboard/pkg/storage"

// Migrations returns the schema migrations owned by the activities
// package. Versions continue from the environments package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     4,
			Description: "create activities and activity allocations tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS activities (
					id BIGSERIAL PRIMARY KEY,
					environment_id BIGINT NOT NULL REFERENCES environments(id) ON DELETE CASCADE,
					description TEXT NOT NULL,
					status VARCHAR(32) NOT NULL DEFAULT 'pending',
					value NUMERIC(12, 2) NOT NULL DEFAULT 0,
					due_date TIMESTAMP,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_activities_environment
					ON activities (environment_id, created_at DESC);

				CREATE TABLE IF NOT EXISTS activity_allocations (
					activity_id BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
					participant_id BIGINT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
					PRIMARY KEY (activity_id, participant_id)
				);
			`,
		},
	}
}
