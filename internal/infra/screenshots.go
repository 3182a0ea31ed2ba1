package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/opspulse/workmon/internal/domain"
)

// FileScreenshotStore implements domain.ScreenshotStore on the local
// filesystem. Files get random names so references never leak content.
// Encryption-at-rest belongs to the production storage collaborator; this
// store is the local development stand-in at that boundary.
type FileScreenshotStore struct {
	dir string
}

// NewFileScreenshotStore creates a store rooted at dir.
func NewFileScreenshotStore(dir string) *FileScreenshotStore {
	return &FileScreenshotStore{dir: dir}
}

// Store writes the raw image bytes and returns the file reference.
func (s *FileScreenshotStore) Store(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", fmt.Errorf("refusing to store empty screenshot")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("create screenshot directory: %w", err)
	}

	ref := uuid.NewString() + ".png"
	path := filepath.Join(s.dir, ref)
	if err := os.WriteFile(path, img, 0600); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return ref, nil
}

// Ensure FileScreenshotStore implements domain.ScreenshotStore.
var _ domain.ScreenshotStore = (*FileScreenshotStore)(nil)
