package port

import (
	"context"

	"github.com/gitdocai/gitdoc/internal/domain"
)

// RepositoryStore exposes the read side of registered repositories plus the
// single field this service owns, last_sync_at.
type RepositoryStore interface {
	GetRepositoryByID(ctx context.Context, id string) (*domain.Repository, error)
	ListRepositoriesByIDs(ctx context.Context, ids []string) ([]domain.Repository, error)
	TouchLastSync(ctx context.Context, repoID string) error
}

// CommitStore is the durable, deduplicated record of ingested commits.
type CommitStore interface {
	// UpsertCommit inserts the commit unless (repository_id, sha) already
	// exists. Returns whether a row was inserted.
	UpsertCommit(ctx context.Context, c *domain.Commit) (bool, error)

	// QueryCommits returns one page of matching commits ordered by commit
	// date descending, plus the total match count.
	QueryCommits(ctx context.Context, f domain.CommitFilter, page, limit int) ([]domain.Commit, int, error)

	// ListAllCommits returns every matching commit ordered by commit date
	// ascending, for report construction.
	ListAllCommits(ctx context.Context, f domain.CommitFilter) ([]domain.Commit, error)

	// ListDistinctAuthors returns distinct authors by commit count
	// descending, optionally scoped to one repository.
	ListDistinctAuthors(ctx context.Context, repositoryID string) ([]domain.AuthorStat, error)

	// ClaimForSummary atomically marks up to limit PENDING/FAILED commits
	// PROCESSING (newest commit date first) and returns them. A concurrent
	// caller finds nothing once rows are claimed.
	ClaimForSummary(ctx context.Context, limit int, repositoryID string) ([]domain.Commit, error)

	// CompleteSummary stores the generated text and marks COMPLETED.
	CompleteSummary(ctx context.Context, commitID, summary string) error

	// FailSummary marks the commit FAILED; it stays eligible for a retry.
	FailSummary(ctx context.Context, commitID string) error

	// ReleaseSummary reverts a claimed commit to PENDING after a
	// rate-limit refusal.
	ReleaseSummary(ctx context.Context, commitID string) error
}

// JobStore persists analysis job lifecycle state. Status writers must leave
// terminal jobs untouched and keep processed_commits monotonic.
type JobStore interface {
	CreateJob(ctx context.Context, j *domain.AnalysisJob) error
	GetJob(ctx context.Context, id string) (*domain.AnalysisJob, error)
	ListJobs(ctx context.Context, limit int) ([]domain.AnalysisJob, error)
	SetJobStatus(ctx context.Context, id, status string) error
	SetJobTotal(ctx context.Context, id string, total int) error
	BumpJobProgress(ctx context.Context, id string, processed int) error
	CompleteJob(ctx context.Context, id string) error
	FailJob(ctx context.Context, id, message string) error
}

// ExportStore records completed report exports.
type ExportStore interface {
	InsertExportJob(ctx context.Context, j *domain.ExportJob) error
}
