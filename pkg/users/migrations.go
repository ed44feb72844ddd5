package users

import "github.com/envboard/envboard/pkg/storage"

// Migrations returns the schema migrations owned by the users package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     1,
			Description: "create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(150) NOT NULL UNIQUE,
					email VARCHAR(254) NOT NULL UNIQUE,
					full_name VARCHAR(255) NOT NULL DEFAULT '',
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);
			`,
		},
	}
}
