package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
	infraconfig "github.com/erp/sallabridge/internal/infrastructure/config"
)

// NewAttachmentStore creates the attachment store named by cfg.Backend.
// Supported backends are "s3" and "filesystem".
func NewAttachmentStore(cfg *infraconfig.StorageConfig, logger *zap.Logger) (salla.AttachmentStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "s3":
		return NewS3AttachmentStore(cfg, WithLogger(logger))
	case "filesystem", "":
		return NewFilesystemAttachmentStore(cfg.BaseDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
