package port

import (
	"context"
	"time"
)

// ExtractionRequest is the payload dispatched to the history extraction
// service. The service clones/fetches the repository, walks its log, and
// reports progress and commits back through the ingestion callbacks.
type ExtractionRequest struct {
	JobID           string     `json:"job_id"`
	RepoURL         string     `json:"repo_url"`
	Branch          string     `json:"branch"`
	CredentialToken string     `json:"credential_token,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	AuthorFilter    []string   `json:"author_filter,omitempty"`
	AllBranches     bool       `json:"all_branches,omitempty"`
}

// HistoryExtractor abstracts the external extraction service. Dispatch is
// fire-and-forget: the coordinator never awaits extraction results.
type HistoryExtractor interface {
	Dispatch(ctx context.Context, req ExtractionRequest) error
}
