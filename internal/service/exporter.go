package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/gitdocai/gitdoc/internal/report"
	"github.com/google/uuid"
)

// Exporter compiles a filtered commit set into a multi-sheet workbook and
// records the export. The generator is optional: narratives fall back to a
// deterministic local summary when it is absent, throttled, or failing.
type Exporter struct {
	repos      port.RepositoryStore
	commits    port.CommitStore
	exports    port.ExportStore
	blob       port.BlobStore
	generator  port.TextGenerator
	maxSamples int
}

// NewExporter creates a report compiler. generator may be nil.
func NewExporter(repos port.RepositoryStore, commits port.CommitStore, exports port.ExportStore, blob port.BlobStore, generator port.TextGenerator, maxSamples int) *Exporter {
	return &Exporter{
		repos:      repos,
		commits:    commits,
		exports:    exports,
		blob:       blob,
		generator:  generator,
		maxSamples: maxSamples,
	}
}

// Compile builds the report for the filter. Any load or serialization
// failure aborts the whole export; the ExportJob row is written only after
// the file is safely stored.
func (s *Exporter) Compile(ctx context.Context, filter domain.CommitFilter) (*domain.ExportJob, error) {
	started := time.Now()

	repos, err := s.repos.ListRepositoriesByIDs(ctx, filter.RepositoryIDs)
	if err != nil {
		return nil, fmt.Errorf("load repositories: %w", err)
	}

	var sections []report.RepoSection
	total := 0
	for _, repo := range repos {
		scoped := filter
		scoped.RepositoryIDs = []string{repo.ID}

		commits, err := s.commits.ListAllCommits(ctx, scoped)
		if err != nil {
			return nil, fmt.Errorf("load commits for %s: %w", repo.Name, err)
		}
		if len(commits) == 0 {
			continue
		}
		total += len(commits)

		activity := report.BuildActivity(repo.Name, commits, filter.Since, filter.Until, s.maxSamples)
		sections = append(sections, report.RepoSection{
			RepositoryName: repo.Name,
			Commits:        commits,
			Files:          report.BuildFileHistory(commits),
			Narrative:      s.narrative(ctx, activity),
		})
	}

	if total == 0 {
		return nil, port.ErrNoCommitsMatched
	}

	data, err := report.BuildWorkbook(sections)
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	name := fmt.Sprintf("commit-report-%s.xlsx", started.Format("20060102-150405"))
	file, err := s.blob.Put(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("store workbook: %w", err)
	}

	job := &domain.ExportJob{
		ID:           uuid.New().String(),
		Filter:       filter,
		Status:       domain.ExportStatusCompleted,
		Files:        []domain.ExportFile{file},
		TotalCommits: total,
		CreatedAt:    started,
		CompletedAt:  time.Now(),
	}
	if err := s.exports.InsertExportJob(ctx, job); err != nil {
		return nil, fmt.Errorf("record export: %w", err)
	}

	slog.Info("export compiled", "file", file.Name, "repos", len(sections), "commits", total)
	return job, nil
}

// narrative asks the generator for a progress narrative and falls back to
// the deterministic local summary on any error, throttle, or empty reply.
func (s *Exporter) narrative(ctx context.Context, a report.Activity) string {
	if s.generator != nil {
		system, user := a.NarrativePrompt()
		text, err := s.generator.Generate(ctx, system, user)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			slog.Warn("narrative generation failed, using fallback", "repo", a.RepositoryName, "error", err)
		}
	}
	return a.FallbackNarrative()
}
