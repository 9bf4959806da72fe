// Package storage provides object storage backends for generated invoice PDFs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/murdhanno/backend/internal/infrastructure/config"
	printinfra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix     = "invoices"
	defaultRegion        = "us-east-1"
	defaultPresignExpiry = 15 * time.Minute
	pdfContentType       = "application/pdf"
)

var _ printinfra.PDFStorage = (*S3PDFStorage)(nil)

// S3PDFStorage keeps print job PDFs in an S3 compatible bucket (AWS S3,
// MinIO, RustFS). Downloads go through presigned URLs.
type S3PDFStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

type S3PDFStorageOption func(*S3PDFStorage)

func WithLogger(logger *zap.Logger) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPresignExpiration overrides StorageConfig.PresignExpiry
func WithPresignExpiration(d time.Duration) S3PDFStorageOption {
	return func(s *S3PDFStorage) { s.expiry = d }
}

// WithKeyPrefix sets the folder objects are written under ("invoices")
func WithKeyPrefix(prefix string) S3PDFStorageOption {
	return func(s *S3PDFStorage) { s.prefix = strings.Trim(prefix, "/") }
}

func checkS3Config(cfg *config.StorageConfig) error {
	switch {
	case cfg == nil:
		return errors.New("storage configuration is required")
	case cfg.S3Bucket == "":
		return errors.New("storage bucket is required")
	case cfg.S3AccessKey == "":
		return errors.New("storage access key is required")
	case cfg.S3SecretKey == "":
		return errors.New("storage secret key is required")
	}
	return nil
}

// normalizeEndpoint defaults the scheme to https. An empty endpoint means AWS.
func normalizeEndpoint(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return raw, nil
}

func NewS3PDFStorage(cfg *config.StorageConfig, opts ...S3PDFStorageOption) (*S3PDFStorage, error) {
	if err := checkS3Config(cfg); err != nil {
		return nil, err
	}
	endpoint, err := normalizeEndpoint(cfg.S3Endpoint)
	if err != nil {
		return nil, err
	}
	region := cfg.S3Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// MinIO and RustFS reject some flexible checksum headers
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	s := &S3PDFStorage{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: defaultKeyPrefix,
		expiry: cfg.PresignExpiry,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	s.presign = s3.NewPresignClient(client)
	for _, opt := range opts {
		opt(s)
	}
	if s.expiry <= 0 {
		s.expiry = defaultPresignExpiry
	}
	return s, nil
}

func (s *S3PDFStorage) GetBucket() string { return s.bucket }

// Ping checks that the bucket is reachable
func (s *S3PDFStorage) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket}); err != nil {
		return fmt.Errorf("storage bucket %s unreachable: %w", s.bucket, err)
	}
	return nil
}

// EnsureBucket creates the bucket on first start. A bucket that exists, or
// one created concurrently by another instance, is fine.
func (s *S3PDFStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &s.bucket})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Store writes the PDF to {prefix}/{yyyy}/{mm}/{job}.pdf
func (s *S3PDFStorage) Store(ctx context.Context, req *printinfra.StoreRequest) (*printinfra.StoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := s.key(printinfra.ObjectPath(req.JobID, s.now()))
	size := int64(len(req.PDFData))
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(req.PDFData),
		ContentLength: &size,
		ContentType:   aws.String(pdfContentType),
	}); err != nil {
		return nil, failed("failed to upload PDF", err)
	}

	s.logger.Info("PDF uploaded", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int64("size", size))
	return &printinfra.StoreResult{Path: key, URL: s.GetURL(key), Size: size}, nil
}

// Get streams the object. The caller closes the body.
func (s *S3PDFStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, failed("storage key is required", nil)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	switch {
	case err == nil:
		return out.Body, nil
	case isNotFound(err):
		return nil, failed("PDF not found", printinfra.ErrPDFNotFound)
	default:
		return nil, failed("failed to download PDF", err)
	}
}

// Delete removes the object. Deleting a missing key succeeds.
func (s *S3PDFStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return failed("storage key is required", nil)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return failed("failed to delete PDF", err)
	}
	s.logger.Debug("PDF deleted", zap.String("key", key))
	return nil
}

// CleanupOlderThan deletes objects under the prefix whose LastModified is
// before now-age. It returns how many were removed before any error.
func (s *S3PDFStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	list := &s3.ListObjectsV2Input{Bucket: &s.bucket}
	if s.prefix != "" {
		list.Prefix = aws.String(s.prefix + "/")
	}

	deleted := 0
	pages := s3.NewListObjectsV2Paginator(s.client, list)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return deleted, failed("failed to list PDFs", err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if err := s.Delete(ctx, aws.ToString(obj.Key)); err != nil {
				return deleted, err
			}
			deleted++
		}
	}

	s.logger.Info("expired PDFs removed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// GetURL presigns a download link with the default expiry. It returns "" if
// signing fails.
func (s *S3PDFStorage) GetURL(key string) string {
	link, _, err := s.GenerateDownloadURL(context.Background(), key, 0)
	if err != nil {
		s.logger.Warn("presign failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return link
}

// GenerateDownloadURL presigns a GET for key. expiresIn <= 0 uses the
// configured expiry.
func (s *S3PDFStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.expiry
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:              &s.bucket,
		Key:                 &key,
		ResponseContentType: aws.String(pdfContentType),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

func (s *S3PDFStorage) key(rel string) string {
	if s.prefix == "" {
		return rel
	}
	return path.Join(s.prefix, rel)
}

func failed(msg string, cause error) *printinfra.RenderError {
	return printinfra.NewRenderError(printinfra.ErrCodeStorageFailed, msg, cause)
}

func isNotFound(err error) bool {
	var (
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
		notFound *types.NotFound
	)
	if errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound) {
		return true
	}
	// some S3 compatible services only report the code in the message
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}
