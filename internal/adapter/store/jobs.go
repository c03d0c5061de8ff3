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

const jobColumns = `id, repository_id, status, start_date, end_date, author_filter, all_branches,
	COALESCE(total_commits, 0), COALESCE(processed_commits, 0), COALESCE(error, ''), created_at, completed_at`

// Terminal statuses are excluded from every status-writing statement so a
// COMPLETED or FAILED job is never mutated again.
const jobNotTerminal = `status NOT IN ('COMPLETED', 'FAILED')`

// CreateJob inserts a new analysis job in PENDING.
func (s *PostgresStore) CreateJob(ctx context.Context, j *domain.AnalysisJob) error {
	query := `INSERT INTO analysis_jobs (id, repository_id, status, start_date, end_date, author_filter, all_branches)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		j.ID, j.RepositoryID, j.Status, j.StartDate, j.EndDate, pq.Array(j.AuthorFilter), j.AllBranches,
	).Scan(&j.CreatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetJob returns a job by id.
func (s *PostgresStore) GetJob(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM analysis_jobs WHERE id = $1`, jobColumns)

	var j domain.AnalysisJob
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.RepositoryID, &j.Status, &j.StartDate, &j.EndDate, pq.Array(&j.AuthorFilter), &j.AllBranches,
		&j.TotalCommits, &j.ProcessedCommits, &j.Error, &j.CreatedAt, &j.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// ListJobs returns jobs newest first.
func (s *PostgresStore) ListJobs(ctx context.Context, limit int) ([]domain.AnalysisJob, error) {
	if limit < 1 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM analysis_jobs ORDER BY created_at DESC LIMIT $1`, jobColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.AnalysisJob
	for rows.Next() {
		var j domain.AnalysisJob
		if err := rows.Scan(
			&j.ID, &j.RepositoryID, &j.Status, &j.StartDate, &j.EndDate, pq.Array(&j.AuthorFilter), &j.AllBranches,
			&j.TotalCommits, &j.ProcessedCommits, &j.Error, &j.CreatedAt, &j.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SetJobStatus moves a non-terminal job to a new status.
func (s *PostgresStore) SetJobStatus(ctx context.Context, id, status string) error {
	query := `UPDATE analysis_jobs SET status = $1 WHERE id = $2 AND ` + jobNotTerminal
	_, err := s.db.ExecContext(ctx, query, status, id)
	return err
}

// SetJobTotal records the total commit count for the run.
func (s *PostgresStore) SetJobTotal(ctx context.Context, id string, total int) error {
	query := `UPDATE analysis_jobs SET total_commits = $1 WHERE id = $2 AND ` + jobNotTerminal
	_, err := s.db.ExecContext(ctx, query, total, id)
	return err
}

// BumpJobProgress advances processed_commits. The incoming value is capped
// at the total first (only once the total is known), then GREATEST against
// the stored counter keeps progress monotonic under out-of-order callbacks.
func (s *PostgresStore) BumpJobProgress(ctx context.Context, id string, processed int) error {
	query := `UPDATE analysis_jobs
	          SET processed_commits = GREATEST(
	              COALESCE(processed_commits, 0),
	              LEAST($1, COALESCE(total_commits, $1)))
	          WHERE id = $2 AND ` + jobNotTerminal
	_, err := s.db.ExecContext(ctx, query, processed, id)
	return err
}

// CompleteJob moves a non-terminal job to COMPLETED.
func (s *PostgresStore) CompleteJob(ctx context.Context, id string) error {
	query := `UPDATE analysis_jobs SET status = $1, completed_at = NOW() WHERE id = $2 AND ` + jobNotTerminal
	_, err := s.db.ExecContext(ctx, query, domain.JobStatusCompleted, id)
	return err
}

// FailJob moves a non-terminal job to FAILED with an error message.
func (s *PostgresStore) FailJob(ctx context.Context, id, message string) error {
	query := `UPDATE analysis_jobs SET status = $1, error = $2, completed_at = NOW() WHERE id = $3 AND ` + jobNotTerminal
	_, err := s.db.ExecContext(ctx, query, domain.JobStatusFailed, message, id)
	return err
}
