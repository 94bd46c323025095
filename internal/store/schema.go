package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the idempotent DDL for the engine's two tables. The unique index
// on (document_id, version_number) is what makes concurrent version
// allocation safe: the losing writer hits a unique violation and retries.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                UUID PRIMARY KEY,
	org_id            TEXT NOT NULL DEFAULT '',
	title             TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT '',
	jurisdiction_tags TEXT[] NOT NULL DEFAULT '{}',
	created_by        TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS policy_versions (
	id                UUID PRIMARY KEY,
	document_id       UUID NOT NULL REFERENCES documents(id),
	version_number    INTEGER NOT NULL,
	title             TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT '',
	jurisdiction_tags TEXT[] NOT NULL DEFAULT '{}',
	content           JSONB NOT NULL,
	status            TEXT NOT NULL DEFAULT 'draft',
	change_summary    TEXT NOT NULL DEFAULT '',
	word_count        INTEGER NOT NULL DEFAULT 0,
	created_by        TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	approved_by       TEXT,
	approved_at       TIMESTAMPTZ,
	published_by      TEXT,
	published_at      TIMESTAMPTZ,
	deleted_at        TIMESTAMPTZ,
	UNIQUE (document_id, version_number)
);

CREATE INDEX IF NOT EXISTS idx_policy_versions_document
	ON policy_versions (document_id, version_number DESC);
`

// Migrate applies the schema. Safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
