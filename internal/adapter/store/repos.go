package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/lib/pq"
)

// GetRepositoryByID returns a registered repository.
func (s *PostgresStore) GetRepositoryByID(ctx context.Context, id string) (*domain.Repository, error) {
	query := `SELECT id, name, url, default_branch, COALESCE(credential_ref, ''), last_sync_at, created_at
	          FROM repositories WHERE id = $1`

	var r domain.Repository
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Name, &r.URL, &r.DefaultBranch, &r.CredentialRef, &r.LastSyncAt, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRepoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}
	return &r, nil
}

// ListRepositoriesByIDs returns repositories for the given ids; an empty id
// list returns every repository.
func (s *PostgresStore) ListRepositoriesByIDs(ctx context.Context, ids []string) ([]domain.Repository, error) {
	query := `SELECT id, name, url, default_branch, COALESCE(credential_ref, ''), last_sync_at, created_at
	          FROM repositories`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` WHERE id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []domain.Repository
	for rows.Next() {
		var r domain.Repository
		if err := rows.Scan(
			&r.ID, &r.Name, &r.URL, &r.DefaultBranch, &r.CredentialRef, &r.LastSyncAt, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// TouchLastSync records a successful ingestion run on the repository.
func (s *PostgresStore) TouchLastSync(ctx context.Context, repoID string) error {
	query := `UPDATE repositories SET last_sync_at = NOW() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, repoID)
	return err
}
