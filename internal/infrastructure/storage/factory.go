package storage

import (
	"context"
	"fmt"

	infraconfig "github.com/murdhanno/backend/internal/infrastructure/config"
	printinfra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// NewPDFStorage builds the backend selected by cfg.Backend. For s3 the
// bucket is created when missing.
func NewPDFStorage(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (printinfra.PDFStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", infraconfig.StorageFilesystem:
		return printinfra.NewFileSystemStorage(&printinfra.FileSystemStorageConfig{
			BasePath: cfg.BasePath,
			BaseURL:  cfg.BaseURL,
			Logger:   logger.Named("pdf_storage"),
		})
	case infraconfig.StorageS3:
		s, err := NewS3PDFStorage(cfg, WithLogger(logger.Named("pdf_storage")))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 PDF storage",
			zap.String("bucket", s.GetBucket()),
			zap.String("endpoint", cfg.S3Endpoint))
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
