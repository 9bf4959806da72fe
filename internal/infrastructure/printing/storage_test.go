package printing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*FileSystemStorage, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{
		BasePath: dir,
		BaseURL:  "/api/v1/print/files/",
	})
	require.NoError(t, err)
	storage.now = func() time.Time { return time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC) }
	return storage, dir
}

func TestNewFileSystemStorage_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "invoices")
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: dir})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/print/files", storage.config.BaseURL)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestObjectPath(t *testing.T) {
	id := uuid.MustParse("6f1c1c1e-4c53-4a7e-9d43-0d5a3b7d1f00")
	at := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025/01/6f1c1c1e-4c53-4a7e-9d43-0d5a3b7d1f00.pdf", ObjectPath(id, at))
}

func TestFileSystemStorage_Store(t *testing.T) {
	storage, dir := newTestStorage(t)
	ctx := context.Background()

	t.Run("successful store", func(t *testing.T) {
		jobID := uuid.New()
		pdfData := []byte("%PDF-1.4 test pdf content")

		result, err := storage.Store(ctx, &StoreRequest{JobID: jobID, PDFData: pdfData})
		require.NoError(t, err)
		assert.Equal(t, "2024/03/"+jobID.String()+".pdf", result.Path)
		assert.Equal(t, "/api/v1/print/files/2024/03/"+jobID.String()+".pdf", result.URL)
		assert.Equal(t, int64(len(pdfData)), result.Size)

		content, err := os.ReadFile(filepath.Join(dir, result.Path))
		require.NoError(t, err)
		assert.Equal(t, pdfData, content)

		_, err = os.Stat(filepath.Join(dir, result.Path) + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("nil request", func(t *testing.T) {
		result, err := storage.Store(ctx, nil)
		assert.ErrorContains(t, err, "nil")
		assert.Nil(t, result)
	})

	t.Run("nil job ID", func(t *testing.T) {
		_, err := storage.Store(ctx, &StoreRequest{PDFData: []byte("x")})
		assert.ErrorContains(t, err, "job")
	})

	t.Run("empty PDF data", func(t *testing.T) {
		_, err := storage.Store(ctx, &StoreRequest{JobID: uuid.New()})
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.Store(cancelled, &StoreRequest{JobID: uuid.New(), PDFData: []byte("x")})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileSystemStorage_Get(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()
	pdfData := []byte("%PDF-1.4 test pdf content")

	result, err := storage.Store(ctx, &StoreRequest{JobID: uuid.New(), PDFData: pdfData})
	require.NoError(t, err)

	t.Run("successful get", func(t *testing.T) {
		reader, err := storage.Get(ctx, result.Path)
		require.NoError(t, err)
		defer reader.Close()

		content, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, pdfData, content)
	})

	t.Run("file not found", func(t *testing.T) {
		reader, err := storage.Get(ctx, "2024/03/missing.pdf")
		assert.ErrorIs(t, err, ErrPDFNotFound)
		assert.Nil(t, reader)
	})

	for _, path := range []string{"../../../etc/passwd", "/etc/passwd", "2024/..\\..\\secret.pdf", "", "."} {
		t.Run("rejects "+path, func(t *testing.T) {
			reader, err := storage.Get(ctx, path)
			assert.Error(t, err)
			assert.Nil(t, reader)

			var renderErr *RenderError
			require.True(t, errors.As(err, &renderErr))
			assert.Equal(t, ErrCodeStorageFailed, renderErr.Code)
		})
	}
}

func TestFileSystemStorage_Delete(t *testing.T) {
	storage, dir := newTestStorage(t)
	ctx := context.Background()

	result, err := storage.Store(ctx, &StoreRequest{JobID: uuid.New(), PDFData: []byte("%PDF")})
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, result.Path))
	_, err = os.Stat(filepath.Join(dir, result.Path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(ctx, result.Path), "deleting twice is fine")
	assert.Error(t, storage.Delete(ctx, "../../../etc/passwd"))
}

func TestFileSystemStorage_CleanupOlderThan(t *testing.T) {
	storage, dir := newTestStorage(t)
	ctx := context.Background()

	var paths []string
	for i := 0; i < 3; i++ {
		res, err := storage.Store(ctx, &StoreRequest{JobID: uuid.New(), PDFData: []byte("%PDF")})
		require.NoError(t, err)
		paths = append(paths, filepath.Join(dir, res.Path))
	}
	// a stray non-PDF file is never touched
	stray := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(stray, []byte("keep"), 0o644))

	// age the first file past the cutoff
	now := storage.now()
	old := now.Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(paths[0], old, old))
	require.NoError(t, os.Chtimes(paths[1], now, now))
	require.NoError(t, os.Chtimes(paths[2], now, now))
	require.NoError(t, os.Chtimes(stray, old, old))

	deleted, err := storage.CleanupOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = os.Stat(paths[0])
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, paths[1])
	assert.FileExists(t, stray)

	t.Run("cancelled context stops early", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		deleted, err := storage.CleanupOlderThan(cancelled, 0)
		assert.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestFileSystemStorage_GetURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		path     string
		expected string
	}{
		{"simple path", "/api/v1/print/files", "2024/01/job-id.pdf", "/api/v1/print/files/2024/01/job-id.pdf"},
		{"https base URL", "https://example.com/prints/", "2024/01/job-id.pdf", "https://example.com/prints/2024/01/job-id.pdf"},
		{"path with dots", "/files", "2024/01/./job-id.pdf", "/files/2024/01/job-id.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := NewFileSystemStorage(&FileSystemStorageConfig{
				BasePath: t.TempDir(),
				BaseURL:  tt.baseURL,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, storage.GetURL(tt.path))
		})
	}
}

func TestContainsDotDot(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"2024/01/file.pdf", false},
		{"2024/../secret/file.pdf", true},
		{"../etc/passwd", true},
		{"..\\windows\\system32", true},
		{"2024/./01/file.pdf", false},
		{"2024/..hidden.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsDotDot(tt.path))
		})
	}
}
