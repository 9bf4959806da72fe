package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/infrastructure/config"
	printinfra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 answers the path-style requests the PDF storage issues
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	created bool
	objects map[string]fakeObject
}

type fakeObject struct {
	data     []byte
	modified time.Time
}

func newFakeS3(bucket string, created bool) *fakeS3 {
	return &fakeS3{bucket: bucket, created: created, objects: map[string]fakeObject{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != f.bucket {
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	if key == "" {
		switch {
		case r.Method == http.MethodHead:
			if !f.created {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut:
			f.created = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
			f.list(w, r.URL.Query().Get("prefix"))
		default:
			writeS3Error(w, http.StatusNotImplemented, "NotImplemented")
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		f.objects[key] = fakeObject{data: data, modified: time.Now().UTC()}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", fmt.Sprint(len(obj.data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(obj.data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeS3Error(w, http.StatusNotImplemented, "NotImplemented")
	}
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>",
		f.bucket, prefix, len(keys))
	for _, k := range keys {
		obj := f.objects[k]
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><LastModified>%s</LastModified><Size>%d</Size></Contents>",
			k, obj.modified.Format("2006-01-02T15:04:05.000Z"), len(obj.data))
	}
	b.WriteString(`</ListBucketResult>`)

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, b.String())
}

func (f *fakeS3) age(key string, by time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj := f.objects[key]
	obj.modified = obj.modified.Add(-by)
	f.objects[key] = obj
}

func (f *fakeS3) hasBucket() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

func (f *fakeS3) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func testStorageConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Backend:       config.StorageS3,
		S3Endpoint:    endpoint,
		S3Region:      "ap-south-1",
		S3Bucket:      "invoices-test",
		S3AccessKey:   "test-key",
		S3SecretKey:   "test-secret",
		S3PathStyle:   true,
		PresignExpiry: 10 * time.Minute,
	}
}

func newFakeBackedStorage(t *testing.T, created bool) (*S3PDFStorage, *fakeS3) {
	t.Helper()
	fake := newFakeS3("invoices-test", created)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := NewS3PDFStorage(testStorageConfig(server.URL), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, fake
}

func TestNewS3PDFStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3PDFStorage(nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig("http://localhost:9000")
		cfg.S3Bucket = ""
		_, err := NewS3PDFStorage(cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := testStorageConfig("http://localhost:9000")
		cfg.S3AccessKey = ""
		_, err := NewS3PDFStorage(cfg)
		assert.ErrorContains(t, err, "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := testStorageConfig("http://localhost:9000")
		cfg.S3SecretKey = ""
		_, err := NewS3PDFStorage(cfg)
		assert.ErrorContains(t, err, "secret key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := testStorageConfig("localhost:9000")
		cfg.PresignExpiry = 0
		s, err := NewS3PDFStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "invoices-test", s.GetBucket())
		assert.Equal(t, 15*time.Minute, s.expiry)
		assert.Equal(t, "invoices", s.prefix)
	})

	t.Run("options", func(t *testing.T) {
		s, err := NewS3PDFStorage(testStorageConfig("http://localhost:9000"),
			WithPresignExpiration(time.Hour),
			WithKeyPrefix("/labels/"))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.expiry)
		assert.Equal(t, "labels", s.prefix)
	})
}

func TestS3PDFStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3PDFStorage(testStorageConfig("http://localhost:9000"))
	require.NoError(t, err)

	u, expiresAt, err := s.GenerateDownloadURL(context.Background(), "invoices/2024/03/job.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "localhost:9000/invoices-test/invoices/2024/03/job.pdf")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", 0)
	assert.ErrorContains(t, err, "storage key is required")
	assert.Contains(t, s.GetURL("invoices/x.pdf"), "X-Amz-Expires=600")
	assert.Empty(t, s.GetURL(""))
}

func TestS3PDFStorage_EnsureBucket(t *testing.T) {
	s, fake := newFakeBackedStorage(t, false)

	require.NoError(t, s.EnsureBucket(context.Background()))
	assert.True(t, fake.hasBucket())
	require.NoError(t, s.EnsureBucket(context.Background()))
	assert.NoError(t, s.Ping(context.Background()))
}

func TestS3PDFStorage_StoreGetDelete(t *testing.T) {
	s, fake := newFakeBackedStorage(t, true)
	s.now = func() time.Time { return time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	jobID := uuid.New()
	pdf := []byte("%PDF-1.4 invoice")
	result, err := s.Store(ctx, &printinfra.StoreRequest{JobID: jobID, PDFData: pdf})
	require.NoError(t, err)
	assert.Equal(t, "invoices/2024/03/"+jobID.String()+".pdf", result.Path)
	assert.Equal(t, int64(len(pdf)), result.Size)
	assert.Contains(t, result.URL, result.Path)
	assert.Equal(t, 1, fake.count())

	body, err := s.Get(ctx, result.Path)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, pdf, data)

	require.NoError(t, s.Delete(ctx, result.Path))
	assert.Zero(t, fake.count())

	_, err = s.Get(ctx, result.Path)
	assert.ErrorIs(t, err, printinfra.ErrPDFNotFound)

	_, err = s.Store(ctx, &printinfra.StoreRequest{JobID: uuid.New()})
	assert.ErrorContains(t, err, "empty")
	assert.Error(t, s.Delete(ctx, ""))
}

func TestS3PDFStorage_CleanupOlderThan(t *testing.T) {
	s, fake := newFakeBackedStorage(t, true)
	ctx := context.Background()

	var keys []string
	for i := 0; i < 3; i++ {
		res, err := s.Store(ctx, &printinfra.StoreRequest{JobID: uuid.New(), PDFData: []byte("%PDF")})
		require.NoError(t, err)
		keys = append(keys, res.Path)
	}
	fake.age(keys[0], 72*time.Hour)
	fake.age(keys[2], 48*time.Hour)

	deleted, err := s.CleanupOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 1, fake.count())

	_, err = s.Get(ctx, keys[1])
	assert.NoError(t, err)
}

func TestS3PDFStorage_UnreachableBucket(t *testing.T) {
	s, _ := newFakeBackedStorage(t, false)
	s.bucket = "other"

	err := s.Ping(context.Background())
	assert.ErrorContains(t, err, "unreachable")

	_, err = s.Get(context.Background(), "invoices/x.pdf")
	var renderErr *printinfra.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, printinfra.ErrCodeStorageFailed, renderErr.Code)
}

func TestNewPDFStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("filesystem", func(t *testing.T) {
		s, err := NewPDFStorage(ctx, &config.StorageConfig{
			Backend:  config.StorageFilesystem,
			BasePath: t.TempDir(),
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &printinfra.FileSystemStorage{}, s)
	})

	t.Run("s3 creates the bucket", func(t *testing.T) {
		fake := newFakeS3("invoices-test", false)
		server := httptest.NewServer(fake)
		defer server.Close()

		s, err := NewPDFStorage(ctx, testStorageConfig(server.URL), zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.IsType(t, &S3PDFStorage{}, s)
		assert.True(t, fake.hasBucket())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewPDFStorage(ctx, &config.StorageConfig{Backend: "ftp"}, nil)
		assert.ErrorContains(t, err, "unsupported storage backend")
	})
}
