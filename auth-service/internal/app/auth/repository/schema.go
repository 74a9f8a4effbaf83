package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          VARCHAR(60)  NOT NULL,
	email         VARCHAR(255) NOT NULL,
	address       VARCHAR(400) NOT NULL,
	password_hash TEXT         NOT NULL,
	role          VARCHAR(20)  NOT NULL,
	created_at    TIMESTAMPTZ  NOT NULL,
	updated_at    TIMESTAMPTZ  NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (lower(email));
CREATE INDEX IF NOT EXISTS users_role_idx ON users (role);
`

// EnsureSchema создает таблицу пользователей, если ее еще нет
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to apply users schema: %w", err)
	}
	return nil
}
