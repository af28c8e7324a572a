package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Ensure FilesystemAttachmentStore implements AttachmentStore
var _ salla.AttachmentStore = (*FilesystemAttachmentStore)(nil)

// FilesystemAttachmentStore serves attachment refs from a local directory.
// This is suitable for development and single-instance deployments.
type FilesystemAttachmentStore struct {
	baseDir string
}

// NewFilesystemAttachmentStore creates a store rooted at baseDir
func NewFilesystemAttachmentStore(baseDir string) (*FilesystemAttachmentStore, error) {
	if baseDir == "" {
		return nil, errors.New("storage base directory is required")
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid storage base directory: %w", err)
	}

	return &FilesystemAttachmentStore{baseDir: abs}, nil
}

// Open reads the file behind ref. Refs are resolved relative to the base
// directory and must not escape it.
func (s *FilesystemAttachmentStore) Open(ctx context.Context, ref string) ([]byte, string, error) {
	if ref == "" {
		return nil, "", errors.New("attachment ref is required")
	}

	full := filepath.Join(s.baseDir, filepath.Clean("/"+ref))
	if !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) && full != s.baseDir {
		return nil, "", fmt.Errorf("attachment ref %q escapes storage root", ref)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("attachment %q not found: %w", ref, err)
		}
		return nil, "", fmt.Errorf("failed to read attachment %q: %w", ref, err)
	}

	return data, filepath.Base(full), nil
}
