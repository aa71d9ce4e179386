// Package storage keeps car photos in S3 or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	// ErrUnsupportedType is returned for content types other than the allowed images.
	ErrUnsupportedType = errors.New("storage: unsupported content type")

	// ErrTooLarge is returned when size exceeds the configured limit.
	ErrTooLarge = errors.New("storage: object too large")
)

// allowedTypes maps each accepted content type to the extension used in keys.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Extension returns the key extension for contentType, or ErrUnsupportedType.
func Extension(contentType string) (string, error) {
	ct, _, _ := strings.Cut(contentType, ";")
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(ct))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return ext, nil
}

// Config holds the bucket settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint (MinIO, R2); enables path-style addressing
	AccessKey string
	SecretKey string
	PublicURL string // CDN or bucket URL prefix used to build image URLs
	MaxBytes  int64
}

// objectAPI is the subset of *s3.Client the store calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImageStore uploads and removes car images.
type ImageStore struct {
	client   objectAPI
	bucket   string
	baseURL  string
	maxBytes int64
	log      *slog.Logger
}

// NewImageStore creates a store from cfg. It returns nil, nil when no bucket
// is configured; callers treat a nil store as "uploads disabled".
func NewImageStore(ctx context.Context, cfg Config, log *slog.Logger) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewImageStore: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return newImageStore(s3.NewFromConfig(awsCfg, s3Opts...), cfg, log), nil
}

func newImageStore(client objectAPI, cfg Config, log *slog.Logger) *ImageStore {
	baseURL := cfg.PublicURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &ImageStore{
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		log:      log,
	}
}

// MaxBytes is the upload size limit.
func (s *ImageStore) MaxBytes() int64 { return s.maxBytes }

// CarImageKey is the object key for a car photo.
func CarImageKey(carID, ext string) string {
	return path.Join("cars", carID+ext)
}

// Put stores body under key and returns its public URL.
func (s *ImageStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if _, err := Extension(contentType); err != nil {
		return "", err
	}
	if size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, s.maxBytes)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=86400"),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("storage.ImageStore.Put: %w", err)
	}

	s.log.InfoContext(ctx, "image uploaded", "key", key, "size", size)
	return s.URL(key), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage.ImageStore.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "image deleted", "key", key)
	return nil
}

// URL returns the public URL for key.
func (s *ImageStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// KeyFromURL reverses URL; ok is false for URLs not served by this store.
func (s *ImageStore) KeyFromURL(u string) (string, bool) {
	key, ok := strings.CutPrefix(u, s.baseURL+"/")
	return key, ok && key != ""
}
