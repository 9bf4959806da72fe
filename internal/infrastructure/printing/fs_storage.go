package printing

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileSystemStorageConfig configures the local disk backend
type FileSystemStorageConfig struct {
	// BasePath defaults to ./data/invoices
	BasePath string
	// BaseURL prefixes download links, default /api/v1/print/files
	BaseURL string
	Logger  *zap.Logger
}

// FileSystemStorage stores invoices under BasePath as {yyyy}/{mm}/{job}.pdf
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewFileSystemStorage applies defaults and creates the base directory
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	cfg := FileSystemStorageConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "./data/invoices"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/api/v1/print/files"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, storageError("failed to create storage directory "+cfg.BasePath, err)
	}
	return &FileSystemStorage{config: &cfg, logger: cfg.Logger, now: time.Now}, nil
}

// Store writes into a temp file beside the target and renames it, so a
// reader never sees a half written invoice
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("operation cancelled", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rel := ObjectPath(req.JobID, s.now())
	target := filepath.Join(s.config.BasePath, filepath.FromSlash(rel))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageError("failed to create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, storageError("failed to create temp file", err)
	}
	_, writeErr := tmp.Write(req.PDFData)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, storageError("failed to write PDF file", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, storageError("failed to set PDF file mode", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, storageError("failed to move PDF file into place", err)
	}

	result := &StoreResult{Path: rel, URL: s.GetURL(rel), Size: int64(len(req.PDFData))}
	s.logger.Info("invoice PDF stored",
		zap.String("job_id", req.JobID.String()),
		zap.String("path", rel),
		zap.Int64("size", result.Size))
	return result, nil
}

// Get opens a stored invoice
func (s *FileSystemStorage) Get(ctx context.Context, rel string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("operation cancelled", err)
	}
	full, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, storageError("PDF not found", ErrPDFNotFound)
	case err != nil:
		return nil, storageError("failed to open PDF file", err)
	}
	return f, nil
}

// Delete removes a stored invoice. A missing file is not an error.
func (s *FileSystemStorage) Delete(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return storageError("operation cancelled", err)
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageError("failed to delete PDF file", err)
	}
	s.logger.Debug("invoice PDF deleted", zap.String("path", rel))
	return nil
}

// CleanupOlderThan walks the tree and removes *.pdf files whose mtime is
// before now-age. Cancellation ends the sweep quietly with the count so far.
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deleted := 0

	walkErr := filepath.WalkDir(s.config.BasePath, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || d.IsDir() || filepath.Ext(p) != ".pdf" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if os.Remove(p) == nil {
			deleted++
		}
		return nil
	})

	if walkErr != nil && ctx.Err() == nil {
		return deleted, storageError("cleanup walk failed", walkErr)
	}
	if deleted > 0 {
		s.logger.Info("expired invoice PDFs removed", zap.Int("deleted", deleted), zap.Duration("age", age))
	}
	return deleted, nil
}

// GetURL joins BaseURL with the cleaned relative path
func (s *FileSystemStorage) GetURL(rel string) string {
	return s.config.BaseURL + "/" + strings.TrimLeft(path.Clean(filepath.ToSlash(rel)), "/")
}

// resolve maps a relative key to a file strictly below BasePath
func (s *FileSystemStorage) resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || containsDotDot(rel) {
		s.logger.Warn("rejected storage path", zap.String("path", rel))
		return "", storageError("invalid path", nil)
	}

	base, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", storageError("failed to resolve base path", err)
	}
	full := filepath.Join(base, filepath.FromSlash(rel))
	inside, err := filepath.Rel(base, full)
	if err != nil || inside == "." || strings.HasPrefix(inside, "..") {
		s.logger.Warn("rejected storage path", zap.String("path", rel))
		return "", storageError("invalid path", nil)
	}
	return full, nil
}

// containsDotDot reports a ".." segment under either separator
func containsDotDot(p string) bool {
	return slices.Contains(strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }), "..")
}

var _ PDFStorage = (*FileSystemStorage)(nil)
