package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gitdocai/gitdoc/internal/domain"
)

// InsertExportJob records a completed export. Export jobs are write-once:
// nothing is inserted for a failed compile.
func (s *PostgresStore) InsertExportJob(ctx context.Context, j *domain.ExportJob) error {
	filter, err := json.Marshal(j.Filter)
	if err != nil {
		return fmt.Errorf("marshal export filter: %w", err)
	}
	files, err := json.Marshal(j.Files)
	if err != nil {
		return fmt.Errorf("marshal export files: %w", err)
	}

	query := `INSERT INTO export_jobs (id, filter, status, files, total_commits, created_at, completed_at)
	          VALUES ($1, $2::jsonb, $3, $4::jsonb, $5, $6, $7)`
	_, err = s.db.ExecContext(ctx, query,
		j.ID, string(filter), j.Status, string(files), j.TotalCommits, j.CreatedAt, j.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export job: %w", err)
	}
	return nil
}
