package domain

import "time"

// Repository represents a registered Git repository. Rows are created and
// maintained by the repository CRUD layer; this service only reads them and
// touches last_sync_at when an ingestion run completes.
type Repository struct {
	ID            string     `json:"id"             db:"id"`
	Name          string     `json:"name"           db:"name"`
	URL           string     `json:"url"            db:"url"`
	DefaultBranch string     `json:"default_branch" db:"default_branch"`
	CredentialRef string     `json:"-"              db:"credential_ref"`
	LastSyncAt    *time.Time `json:"last_sync_at"   db:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at"     db:"created_at"`
}
