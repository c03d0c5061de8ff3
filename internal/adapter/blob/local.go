package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitdocai/gitdoc/internal/domain"
)

// LocalStore implements port.BlobStore on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the target directory if needed and returns a store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Put writes data under name and returns its descriptor.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) (domain.ExportFile, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.ExportFile{}, fmt.Errorf("write export file: %w", err)
	}
	return domain.ExportFile{Name: name, Size: int64(len(data))}, nil
}
