package port

import (
	"context"

	"github.com/gitdocai/gitdoc/internal/domain"
)

// BlobStore abstracts storage for generated report files.
type BlobStore interface {
	// Put stores data under name and returns the resulting file descriptor.
	Put(ctx context.Context, name string, data []byte) (domain.ExportFile, error)
}
