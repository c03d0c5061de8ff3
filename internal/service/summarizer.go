package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
)

// Summarizer drains the backlog of un-summarized commits against a
// quota-limited text generator. Each RunBatch call is self-contained and
// safely repeatable; the drain loop belongs to the caller.
type Summarizer struct {
	commits   port.CommitStore
	generator port.TextGenerator
	batchSize int
	callDelay time.Duration
	maxFiles  int
}

// NewSummarizer creates a summarization engine. batchSize is clamped to 10.
func NewSummarizer(commits port.CommitStore, generator port.TextGenerator, batchSize int, callDelay time.Duration, maxFiles int) *Summarizer {
	if batchSize < 1 {
		batchSize = 1
	}
	if batchSize > 10 {
		batchSize = 10
	}
	return &Summarizer{
		commits:   commits,
		generator: generator,
		batchSize: batchSize,
		callDelay: callDelay,
		maxFiles:  maxFiles,
	}
}

// BatchResult reports one RunBatch outcome.
type BatchResult struct {
	Success     int  `json:"success"`
	Failed      int  `json:"failed"`
	RateLimited bool `json:"rate_limited"`
}

// RunBatch claims up to one batch of PENDING/FAILED commits (newest first,
// optionally scoped to a repository) and summarizes them strictly
// sequentially. A rate-limit refusal reverts the commit to PENDING and stops
// the batch; any other generator failure marks the commit FAILED and moves
// on. Callers drain by invoking RunBatch until it reports zero work or
// RateLimited.
func (s *Summarizer) RunBatch(ctx context.Context, repositoryID string) (BatchResult, error) {
	var result BatchResult

	claimed, err := s.commits.ClaimForSummary(ctx, s.batchSize, repositoryID)
	if err != nil {
		return result, fmt.Errorf("claim batch: %w", err)
	}
	if len(claimed) == 0 {
		return result, nil
	}

	for i, commit := range claimed {
		text, err := s.summarize(ctx, &commit)
		if errors.Is(err, port.ErrRateLimited) {
			slog.Warn("generator rate limited, requeueing batch remainder",
				"commit", commit.ShortSHA(), "remaining", len(claimed)-i)
			result.RateLimited = true
			for _, rest := range claimed[i:] {
				if relErr := s.commits.ReleaseSummary(ctx, rest.ID); relErr != nil {
					slog.Error("release claimed commit failed", "commit_id", rest.ID, "error", relErr)
				}
			}
			return result, nil
		}
		if err != nil {
			slog.Error("summarization failed", "commit", commit.ShortSHA(), "error", err)
			if failErr := s.commits.FailSummary(ctx, commit.ID); failErr != nil {
				slog.Error("mark commit failed", "commit_id", commit.ID, "error", failErr)
			}
			result.Failed++
			continue
		}

		if err := s.commits.CompleteSummary(ctx, commit.ID, text); err != nil {
			slog.Error("store summary failed", "commit_id", commit.ID, "error", err)
			// Leave the row FAILED, not PROCESSING, so a later claim
			// retries it.
			if failErr := s.commits.FailSummary(ctx, commit.ID); failErr != nil {
				slog.Error("mark commit failed", "commit_id", commit.ID, "error", failErr)
			}
			result.Failed++
			continue
		}
		result.Success++

		// Fixed pause after each successful call keeps the sequential
		// loop under the generator's per-minute quota.
		if i < len(claimed)-1 {
			select {
			case <-time.After(s.callDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, nil
}

// summarize calls the generator for one commit.
func (s *Summarizer) summarize(ctx context.Context, c *domain.Commit) (string, error) {
	system := "You are a senior developer reviewing commit history. Describe in one or " +
		"two plain sentences what this commit changes and why, based only on the " +
		"message and the changed files."

	paths := c.ChangedPaths
	truncated := 0
	if s.maxFiles > 0 && len(paths) > s.maxFiles {
		truncated = len(paths) - s.maxFiles
		paths = paths[:s.maxFiles]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Commit message:\n%s\n\n", c.Message)
	fmt.Fprintf(&b, "Files changed: %d\n", c.FilesChanged)
	for _, p := range paths {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	if truncated > 0 {
		fmt.Fprintf(&b, "... and %d more\n", truncated)
	}

	text, err := s.generator.Generate(ctx, system, b.String())
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("generator returned empty summary")
	}
	return text, nil
}
