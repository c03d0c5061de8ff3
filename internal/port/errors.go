package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrValidation       = errors.New("invalid input")
	ErrRepoNotFound     = errors.New("repository not found")
	ErrJobNotFound      = errors.New("analysis job not found")
	ErrCommitNotFound   = errors.New("commit not found")
	ErrNoCommitsMatched = errors.New("no commits matched the export filter")

	// ErrRateLimited marks a text-generation refusal caused by quota
	// exhaustion. Callers must treat it as retry-later, not as failure.
	ErrRateLimited = errors.New("text generator rate limited")
)
