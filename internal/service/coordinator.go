package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/google/uuid"
)

// Coordinator owns the analysis-job lifecycle: it creates jobs, fires the
// extraction dispatch, and exposes read access. State transitions after
// creation are driven by the extraction service through IngestService.
type Coordinator struct {
	repos     port.RepositoryStore
	jobs      port.JobStore
	extractor port.HistoryExtractor
}

// NewCoordinator creates a job coordinator.
func NewCoordinator(repos port.RepositoryStore, jobs port.JobStore, extractor port.HistoryExtractor) *Coordinator {
	return &Coordinator{repos: repos, jobs: jobs, extractor: extractor}
}

// SubmitRequest carries the optional filters for an ingestion run.
type SubmitRequest struct {
	RepositoryID string
	StartDate    *time.Time
	EndDate      *time.Time
	AuthorFilter []string
	AllBranches  bool
}

// Submit validates the repository, persists a PENDING job, and dispatches to
// the extraction service without awaiting it. A dispatch failure is logged
// only: the job stays PENDING until the extractor reports in.
func (s *Coordinator) Submit(ctx context.Context, req SubmitRequest) (*domain.AnalysisJob, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: end_date before start_date", port.ErrValidation)
	}

	repo, err := s.repos.GetRepositoryByID(ctx, req.RepositoryID)
	if err != nil {
		return nil, err
	}

	job := &domain.AnalysisJob{
		ID:           uuid.New().String(),
		RepositoryID: repo.ID,
		Status:       domain.JobStatusPending,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		AuthorFilter: req.AuthorFilter,
		AllBranches:  req.AllBranches,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	// Fire and forget: the submitting caller already has its job id.
	go func() {
		dispatch := port.ExtractionRequest{
			JobID:           job.ID,
			RepoURL:         repo.URL,
			Branch:          repo.DefaultBranch,
			CredentialToken: repo.CredentialRef,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			AuthorFilter:    req.AuthorFilter,
			AllBranches:     req.AllBranches,
		}
		if err := s.extractor.Dispatch(context.Background(), dispatch); err != nil {
			slog.Error("extraction dispatch failed", "job_id", job.ID, "repo_id", repo.ID, "error", err)
			return
		}
		slog.Info("extraction dispatched", "job_id", job.ID, "repo_id", repo.ID)
	}()

	return job, nil
}

// GetStatus returns the job projection for polling clients.
func (s *Coordinator) GetStatus(ctx context.Context, jobID string) (*domain.AnalysisJob, error) {
	return s.jobs.GetJob(ctx, jobID)
}

// ListJobs returns jobs newest first.
func (s *Coordinator) ListJobs(ctx context.Context, limit int) ([]domain.AnalysisJob, error) {
	return s.jobs.ListJobs(ctx, limit)
}
