package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements run one at a time: pgx's extended protocol rejects
// multi-statement strings. There is no unique index on
// (user_id, "position") — a partial reorder legitimately leaves
// duplicate positions until the next repack.
var schemaStatements = []string{
	`
CREATE TABLE IF NOT EXISTS users (
    id            bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    username      text NOT NULL,
    email         text NOT NULL,
    password_hash text NOT NULL,
    created_at    timestamptz NOT NULL DEFAULT now(),
    CONSTRAINT users_username_key UNIQUE (username),
    CONSTRAINT users_email_key UNIQUE (email)
)`,
	`
CREATE TABLE IF NOT EXISTS tasks (
    id          bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    user_id     bigint NOT NULL REFERENCES users (id),
    title       text NOT NULL,
    description text NOT NULL DEFAULT '',
    completed   boolean NOT NULL DEFAULT FALSE,
    important   boolean NOT NULL DEFAULT FALSE,
    "position"  integer NOT NULL,
    due_date    date,
    created_at  timestamptz NOT NULL DEFAULT now(),
    updated_at  timestamptz NOT NULL DEFAULT now()
)`,
	`
CREATE INDEX IF NOT EXISTS tasks_user_id_position_idx
    ON tasks (user_id, "position")`,
}

// Migrate creates the users and tasks tables if they don't exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		_, err := pool.Exec(ctx, stmt)
		if err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
