package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and validates the connection.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("empty postgres URL")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		first_name    TEXT        NOT NULL,
		last_name     TEXT        NOT NULL,
		email         TEXT        NOT NULL,
		phone         TEXT        NOT NULL,
		id_number     TEXT        NOT NULL,
		role          TEXT        NOT NULL DEFAULT 'Voter',
		password_hash TEXT        NOT NULL,
		id_image      TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key     UNIQUE (email),
		CONSTRAINT users_phone_key     UNIQUE (phone),
		CONSTRAINT users_id_number_key UNIQUE (id_number)
	)`,
	`CREATE TABLE IF NOT EXISTS athletes (
		id            BIGSERIAL PRIMARY KEY,
		first_name    TEXT        NOT NULL,
		last_name     TEXT        NOT NULL,
		id_number     TEXT        NOT NULL,
		date_of_birth DATE        NOT NULL,
		event         TEXT        NOT NULL,
		description   TEXT        NOT NULL,
		image         TEXT,
		created_by    BIGINT      NOT NULL REFERENCES users (id),
		updated_by    BIGINT      REFERENCES users (id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT athletes_id_number_key UNIQUE (id_number)
	)`,
}

// EnsureSchema creates the tables when they do not exist yet. Uniqueness of
// email, phone and ID number is enforced here; the repositories translate
// violations into field-specific conflicts.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
