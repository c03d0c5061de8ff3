package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/google/uuid"
)

// IngestService receives the extraction service's progress callbacks: status
// transitions, totals, and the commits themselves. Every write is safe to
// repeat — upserts are idempotent, progress is monotonic, and terminal jobs
// are never mutated.
type IngestService struct {
	repos       port.RepositoryStore
	jobs        port.JobStore
	commits     port.CommitStore
	jiraBaseURL string
}

// NewIngestService creates an ingestion service.
func NewIngestService(repos port.RepositoryStore, jobs port.JobStore, commits port.CommitStore, jiraBaseURL string) *IngestService {
	return &IngestService{repos: repos, jobs: jobs, commits: commits, jiraBaseURL: jiraBaseURL}
}

// MarkCloning records that the extractor started cloning/fetching.
func (s *IngestService) MarkCloning(ctx context.Context, jobID string) error {
	if err := s.guardTerminal(ctx, jobID); err != nil {
		return err
	}
	return s.jobs.SetJobStatus(ctx, jobID, domain.JobStatusCloning)
}

// MarkParsing records that the clone resolved and the log walk began, along
// with the total commit count of this run.
func (s *IngestService) MarkParsing(ctx context.Context, jobID string, totalCommits int) error {
	if err := s.guardTerminal(ctx, jobID); err != nil {
		return err
	}
	if totalCommits < 0 {
		return fmt.Errorf("%w: negative total_commits", port.ErrValidation)
	}
	if err := s.jobs.SetJobStatus(ctx, jobID, domain.JobStatusParsing); err != nil {
		return err
	}
	return s.jobs.SetJobTotal(ctx, jobID, totalCommits)
}

// CommitRecord is one commit as reported by the extraction service.
type CommitRecord struct {
	SHA          string    `json:"sha"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	CommitDate   time.Time `json:"commit_date"`
	Message      string    `json:"message"`
	ChangedPaths []string  `json:"changed_paths"`
	Processed    int       `json:"processed"` // commits processed so far in this run
}

// IngestCommit stores one reported commit, extracts a ticket reference, and
// advances the job's progress counter. Re-reporting the same (repository,
// sha) is a no-op.
func (s *IngestService) IngestCommit(ctx context.Context, jobID string, rec CommitRecord) (bool, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job.Terminal() {
		slog.Warn("commit reported for terminal job", "job_id", jobID, "sha", rec.SHA)
		return false, nil
	}
	if rec.SHA == "" {
		return false, fmt.Errorf("%w: missing sha", port.ErrValidation)
	}

	title := rec.Message
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)

	commit := &domain.Commit{
		ID:            uuid.New().String(),
		RepositoryID:  job.RepositoryID,
		SHA:           rec.SHA,
		AuthorName:    rec.AuthorName,
		AuthorEmail:   rec.AuthorEmail,
		CommitDate:    rec.CommitDate,
		Message:       rec.Message,
		MessageTitle:  title,
		FilesChanged:  len(rec.ChangedPaths),
		ChangedPaths:  rec.ChangedPaths,
		SummaryStatus: domain.SummaryStatusPending,
	}

	if key := ExtractTicketKey(title, rec.Message); key != "" {
		commit.TicketKey = key
		commit.TicketURL = s.jiraBaseURL + "/browse/" + key
	}

	inserted, err := s.commits.UpsertCommit(ctx, commit)
	if err != nil {
		return false, err
	}

	if rec.Processed > 0 {
		if err := s.jobs.BumpJobProgress(ctx, jobID, rec.Processed); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// MarkCompleted finishes the run and stamps the repository's last sync time.
func (s *IngestService) MarkCompleted(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Terminal() {
		slog.Warn("completion reported for terminal job", "job_id", jobID, "status", job.Status)
		return nil
	}
	if err := s.jobs.CompleteJob(ctx, jobID); err != nil {
		return err
	}
	if err := s.repos.TouchLastSync(ctx, job.RepositoryID); err != nil {
		slog.Error("touch last_sync_at failed", "repo_id", job.RepositoryID, "error", err)
	}
	slog.Info("ingestion completed", "job_id", jobID, "repo_id", job.RepositoryID)
	return nil
}

// MarkFailed records a terminal failure with the extractor's error text.
func (s *IngestService) MarkFailed(ctx context.Context, jobID, message string) error {
	if err := s.guardTerminal(ctx, jobID); err != nil {
		return err
	}
	slog.Warn("ingestion failed", "job_id", jobID, "error", message)
	return s.jobs.FailJob(ctx, jobID, message)
}

func (s *IngestService) guardTerminal(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Terminal() {
		slog.Warn("update reported for terminal job", "job_id", jobID, "status", job.Status)
	}
	return nil
}

// ticketPattern matches JIRA-style keys: an alphabetic project prefix, a
// dash, and digits. Matching is case-insensitive; stored keys are uppercased.
var ticketPattern = regexp.MustCompile(`(?i)\b([A-Z][A-Z0-9]+-\d+)\b`)

// ExtractTicketKey scans the title first, then the full message; the first
// match wins. Returns "" when no key is present.
func ExtractTicketKey(title, message string) string {
	for _, text := range []string{title, message} {
		if m := ticketPattern.FindString(text); m != "" {
			return strings.ToUpper(m)
		}
	}
	return ""
}
