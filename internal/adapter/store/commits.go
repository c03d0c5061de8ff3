package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/lib/pq"
)

const commitColumns = `id, repository_id, sha, author_name, author_email, commit_date,
	message, message_title, files_changed, changed_paths,
	COALESCE(summary, ''), summary_status, COALESCE(ticket_key, ''), COALESCE(ticket_url, ''), created_at`

// UpsertCommit inserts the commit unless (repository_id, sha) already exists.
// Returns whether a row was inserted, making re-ingestion a safe no-op.
func (s *PostgresStore) UpsertCommit(ctx context.Context, c *domain.Commit) (bool, error) {
	query := `
		INSERT INTO commits (
			id, repository_id, sha, author_name, author_email, commit_date,
			message, message_title, files_changed, changed_paths,
			summary_status, ticket_key, ticket_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''))
		ON CONFLICT (repository_id, sha) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		c.ID, c.RepositoryID, c.SHA, c.AuthorName, c.AuthorEmail, c.CommitDate,
		c.Message, c.MessageTitle, c.FilesChanged, pq.Array(c.ChangedPaths),
		domain.SummaryStatusPending, c.TicketKey, c.TicketURL,
	)
	if err != nil {
		return false, fmt.Errorf("upsert commit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert commit rows: %w", err)
	}
	return n > 0, nil
}

// commitFilterSQL appends WHERE clauses for the filter and returns the
// predicate string plus the extended arg list.
func commitFilterSQL(f domain.CommitFilter, args []interface{}) (string, []interface{}) {
	var clauses []string

	if len(f.RepositoryIDs) > 0 {
		args = append(args, pq.Array(f.RepositoryIDs))
		clauses = append(clauses, fmt.Sprintf("repository_id = ANY($%d)", len(args)))
	}
	if len(f.AuthorEmails) > 0 {
		args = append(args, pq.Array(f.AuthorEmails))
		clauses = append(clauses, fmt.Sprintf("author_email = ANY($%d)", len(args)))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		clauses = append(clauses, fmt.Sprintf("commit_date >= $%d", len(args)))
	}
	if f.Until != nil {
		args = append(args, *f.Until)
		clauses = append(clauses, fmt.Sprintf("commit_date <= $%d", len(args)))
	}
	if f.SummaryStatus != "" {
		args = append(args, f.SummaryStatus)
		clauses = append(clauses, fmt.Sprintf("summary_status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// QueryCommits returns one page of matching commits, newest first, plus the
// total match count for pagination metadata.
func (s *PostgresStore) QueryCommits(ctx context.Context, f domain.CommitFilter, page, limit int) ([]domain.Commit, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	where, args := commitFilterSQL(f, nil)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commits`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count commits: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM commits%s ORDER BY commit_date DESC LIMIT $%d OFFSET $%d`,
		commitColumns, where, len(args)-1, len(args))

	commits, err := s.queryCommits(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return commits, total, nil
}

// ListAllCommits returns every matching commit ordered by commit date
// ascending, for report construction.
func (s *PostgresStore) ListAllCommits(ctx context.Context, f domain.CommitFilter) ([]domain.Commit, error) {
	where, args := commitFilterSQL(f, nil)
	query := fmt.Sprintf(`SELECT %s FROM commits%s ORDER BY commit_date ASC`, commitColumns, where)
	return s.queryCommits(ctx, query, args...)
}

// ListDistinctAuthors returns distinct authors by commit count descending.
func (s *PostgresStore) ListDistinctAuthors(ctx context.Context, repositoryID string) ([]domain.AuthorStat, error) {
	query := `SELECT author_email, MAX(author_name), COUNT(*) AS commit_count
	          FROM commits`
	args := []interface{}{}
	if repositoryID != "" {
		query += ` WHERE repository_id = $1`
		args = append(args, repositoryID)
	}
	query += ` GROUP BY author_email ORDER BY commit_count DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []domain.AuthorStat
	for rows.Next() {
		var a domain.AuthorStat
		if err := rows.Scan(&a.Email, &a.Name, &a.CommitCount); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// ClaimForSummary atomically flips up to limit PENDING/FAILED commits to
// PROCESSING, newest commit date first. SKIP LOCKED keeps two concurrent
// drains from claiming the same rows.
func (s *PostgresStore) ClaimForSummary(ctx context.Context, limit int, repositoryID string) ([]domain.Commit, error) {
	query := fmt.Sprintf(`
		UPDATE commits SET summary_status = $1
		WHERE id IN (
			SELECT id FROM commits
			WHERE summary_status IN ($2, $3)
			  AND ($4 = '' OR repository_id = $4)
			ORDER BY commit_date DESC
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, commitColumns)

	rows, err := s.db.QueryContext(ctx, query,
		domain.SummaryStatusProcessing, domain.SummaryStatusPending, domain.SummaryStatusFailed,
		repositoryID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim commits: %w", err)
	}
	defer rows.Close()

	commits, err := scanCommits(rows)
	if err != nil {
		return nil, err
	}
	// RETURNING order is not guaranteed; restore newest-first.
	sort.Slice(commits, func(i, j int) bool {
		return commits[i].CommitDate.After(commits[j].CommitDate)
	})
	return commits, nil
}

// CompleteSummary stores the generated text and marks COMPLETED.
func (s *PostgresStore) CompleteSummary(ctx context.Context, commitID, summary string) error {
	query := `UPDATE commits SET summary = $1, summary_status = $2 WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, summary, domain.SummaryStatusCompleted, commitID)
	return err
}

// FailSummary marks the commit FAILED; FAILED rows stay eligible for retry.
func (s *PostgresStore) FailSummary(ctx context.Context, commitID string) error {
	query := `UPDATE commits SET summary_status = $1 WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, domain.SummaryStatusFailed, commitID)
	return err
}

// ReleaseSummary reverts a claimed commit to PENDING after a rate-limit
// refusal so a later batch picks it up again.
func (s *PostgresStore) ReleaseSummary(ctx context.Context, commitID string) error {
	query := `UPDATE commits SET summary_status = $1 WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, domain.SummaryStatusPending, commitID)
	return err
}

func (s *PostgresStore) queryCommits(ctx context.Context, query string, args ...interface{}) ([]domain.Commit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query commits: %w", err)
	}
	defer rows.Close()
	return scanCommits(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanCommits(rows rowScanner) ([]domain.Commit, error) {
	var commits []domain.Commit
	for rows.Next() {
		var c domain.Commit
		if err := rows.Scan(
			&c.ID, &c.RepositoryID, &c.SHA, &c.AuthorName, &c.AuthorEmail, &c.CommitDate,
			&c.Message, &c.MessageTitle, &c.FilesChanged, pq.Array(&c.ChangedPaths),
			&c.Summary, &c.SummaryStatus, &c.TicketKey, &c.TicketURL, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}
