package store

import (
	"context"
	"fmt"
)

// schema holds the tables this service owns. The repositories table is owned
// by the CRUD layer; it is created here only so a standalone deployment works
// out of the box.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS repositories (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		url            TEXT NOT NULL,
		default_branch TEXT NOT NULL DEFAULT 'main',
		credential_ref TEXT,
		last_sync_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_jobs (
		id                TEXT PRIMARY KEY,
		repository_id     TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		status            TEXT NOT NULL DEFAULT 'PENDING',
		start_date        TIMESTAMPTZ,
		end_date          TIMESTAMPTZ,
		author_filter     TEXT[],
		all_branches      BOOLEAN NOT NULL DEFAULT FALSE,
		total_commits     INTEGER,
		processed_commits INTEGER NOT NULL DEFAULT 0,
		error             TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at      TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS commits (
		id             TEXT PRIMARY KEY,
		repository_id  TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		sha            TEXT NOT NULL,
		author_name    TEXT NOT NULL,
		author_email   TEXT NOT NULL,
		commit_date    TIMESTAMPTZ NOT NULL,
		message        TEXT NOT NULL,
		message_title  TEXT NOT NULL,
		files_changed  INTEGER NOT NULL DEFAULT 0,
		changed_paths  TEXT[] NOT NULL DEFAULT '{}',
		summary        TEXT,
		summary_status TEXT NOT NULL DEFAULT 'PENDING',
		ticket_key     TEXT,
		ticket_url     TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (repository_id, sha)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_commits_summary_status ON commits (summary_status, commit_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_commits_repo_date ON commits (repository_id, commit_date DESC)`,
	`CREATE TABLE IF NOT EXISTS export_jobs (
		id            TEXT PRIMARY KEY,
		filter        JSONB NOT NULL,
		status        TEXT NOT NULL,
		files         JSONB NOT NULL,
		total_commits INTEGER NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		completed_at  TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema idempotently.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
