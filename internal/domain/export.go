package domain

import "time"

// ExportFile describes one generated report file.
type ExportFile struct {
	Name string `json:"name" db:"name"`
	Size int64  `json:"size" db:"size"`
}

// ExportJob is a write-once audit record of a completed report export.
type ExportJob struct {
	ID           string       `json:"id"            db:"id"`
	Filter       CommitFilter `json:"filter"        db:"filter"`
	Status       string       `json:"status"        db:"status"`
	Files        []ExportFile `json:"files"         db:"files"`
	TotalCommits int          `json:"total_commits" db:"total_commits"`
	CreatedAt    time.Time    `json:"created_at"    db:"created_at"`
	CompletedAt  time.Time    `json:"completed_at"  db:"completed_at"`
}

// Export status constants.
const ExportStatusCompleted = "COMPLETED"
