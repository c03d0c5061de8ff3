package domain

import "time"

// AnalysisJob tracks one ingestion run against one repository. It is created
// PENDING by the coordinator and advanced by the extraction service's progress
// callbacks until it reaches COMPLETED or FAILED.
type AnalysisJob struct {
	ID               string     `json:"id"                db:"id"`
	RepositoryID     string     `json:"repository_id"     db:"repository_id"`
	Status           string     `json:"status"            db:"status"`
	StartDate        *time.Time `json:"start_date"        db:"start_date"`
	EndDate          *time.Time `json:"end_date"          db:"end_date"`
	AuthorFilter     []string   `json:"author_filter"     db:"author_filter"`
	AllBranches      bool       `json:"all_branches"      db:"all_branches"`
	TotalCommits     int        `json:"total_commits"     db:"total_commits"`
	ProcessedCommits int        `json:"processed_commits" db:"processed_commits"`
	Error            string     `json:"error,omitempty"   db:"error"`
	CreatedAt        time.Time  `json:"created_at"        db:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"      db:"completed_at"`
}

// Job status constants.
const (
	JobStatusPending   = "PENDING"
	JobStatusCloning   = "CLONING"
	JobStatusParsing   = "PARSING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// Terminal reports whether the job can no longer be mutated.
func (j *AnalysisJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
