package environments

import "github.com/envboard/envboard/pkg/storage"

// Migrations returns the schema migrations owned by the environments
// package. Versions continue from the users package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     2,
			Description: "create environments, roles, participants and participant set tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS environments (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					color VARCHAR(32) NOT NULL DEFAULT '',
					administrator_id BIGINT NOT NULL REFERENCES users(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS environment_participant_set (
					environment_id BIGINT NOT NULL REFERENCES environments(id) ON DELETE CASCADE,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					PRIMARY KEY (environment_id, user_id)
				);

				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					environment_id BIGINT NOT NULL REFERENCES environments(id) ON DELETE CASCADE,
					name VARCHAR(32) NOT NULL,
					can_view BOOLEAN NOT NULL DEFAULT FALSE,
					can_create BOOLEAN NOT NULL DEFAULT FALSE,
					can_edit BOOLEAN NOT NULL DEFAULT FALSE,
					can_delete BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_env_name
					ON roles (environment_id, name) WHERE name <> 'custom';

				CREATE TABLE IF NOT EXISTS participants (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					environment_id BIGINT NOT NULL REFERENCES environments(id) ON DELETE CASCADE,
					role_id BIGINT REFERENCES roles(id) ON DELETE SET NULL,
					joined_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, environment_id)
				);

				CREATE INDEX IF NOT EXISTS idx_participants_environment
					ON participants (environment_id);
			`,
		},
		{
			Version:     3,
			Description: "create invitations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS invitations (
					id BIGSERIAL PRIMARY KEY,
					environment_id BIGINT NOT NULL REFERENCES environments(id) ON DELETE CASCADE,
					email VARCHAR(254) NOT NULL,
					token VARCHAR(64) NOT NULL UNIQUE,
					inviter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					guest_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					accepted BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending
					ON invitations (environment_id, guest_id) WHERE NOT accepted;

				CREATE INDEX IF NOT EXISTS idx_invitations_guest
					ON invitations (guest_id);
			`,
		},
	}
}
