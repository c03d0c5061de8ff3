package domain

import "time"

// Commit is one ingested commit. (repository_id, sha) is unique; re-ingesting
// the same commit is a no-op. Summary fields are mutated only by the
// summarization engine.
type Commit struct {
	ID            string    `json:"id"             db:"id"`
	RepositoryID  string    `json:"repository_id"  db:"repository_id"`
	SHA           string    `json:"sha"            db:"sha"`
	AuthorName    string    `json:"author_name"    db:"author_name"`
	AuthorEmail   string    `json:"author_email"   db:"author_email"`
	CommitDate    time.Time `json:"commit_date"    db:"commit_date"`
	Message       string    `json:"message"        db:"message"`
	MessageTitle  string    `json:"message_title"  db:"message_title"`
	FilesChanged  int       `json:"files_changed"  db:"files_changed"`
	ChangedPaths  []string  `json:"changed_paths"  db:"changed_paths"`
	Summary       string    `json:"summary,omitempty"    db:"summary"`
	SummaryStatus string    `json:"summary_status" db:"summary_status"`
	TicketKey     string    `json:"ticket_key,omitempty" db:"ticket_key"`
	TicketURL     string    `json:"ticket_url,omitempty" db:"ticket_url"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}

// Summary status constants.
const (
	SummaryStatusPending    = "PENDING"
	SummaryStatusProcessing = "PROCESSING"
	SummaryStatusCompleted  = "COMPLETED"
	SummaryStatusFailed     = "FAILED"
)

// ShortSHA returns the first 8 hex characters of the commit hash.
func (c *Commit) ShortSHA() string {
	if len(c.SHA) <= 8 {
		return c.SHA
	}
	return c.SHA[:8]
}

// AuthorLine formats the author as "Name <email>".
func (c *Commit) AuthorLine() string {
	return c.AuthorName + " <" + c.AuthorEmail + ">"
}

// AuthorStat is one distinct commit author with their commit count.
type AuthorStat struct {
	Email       string `json:"email"        db:"email"`
	Name        string `json:"name"         db:"name"`
	CommitCount int    `json:"commit_count" db:"commit_count"`
}

// CommitFilter narrows commit queries. Zero-value fields are ignored.
type CommitFilter struct {
	RepositoryIDs []string   `json:"repository_ids,omitempty"`
	AuthorEmails  []string   `json:"author_emails,omitempty"`
	Since         *time.Time `json:"since,omitempty"`
	Until         *time.Time `json:"until,omitempty"`
	SummaryStatus string     `json:"summary_status,omitempty"`
}
