package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultUploadTimeout = 30 * time.Second

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var (
	// ErrBucketRequired indicates the store was constructed without a bucket name.
	ErrBucketRequired = errors.New("storage: bucket name is required")
	// ErrUnsupportedImageType indicates the upload content type is not an accepted image format.
	ErrUnsupportedImageType = errors.New("storage: unsupported image content type")
)

// StoredImage describes an uploaded object and its public URL.
type StoredImage struct {
	URL        string
	ObjectName string
}

// ImageStore uploads product images to a Cloud Storage bucket.
type ImageStore struct {
	bucket        string
	client        *gcs.Client
	uploadTimeout time.Duration
}

// ImageStoreOption customises ImageStore behaviour.
type ImageStoreOption func(*ImageStore)

// WithUploadTimeout bounds the time spent writing a single object.
func WithUploadTimeout(timeout time.Duration) ImageStoreOption {
	return func(s *ImageStore) {
		if timeout > 0 {
			s.uploadTimeout = timeout
		}
	}
}

// NewImageStore constructs an ImageStore writing to the given bucket.
func NewImageStore(ctx context.Context, bucket string, opts []option.ClientOption, storeOpts ...ImageStoreOption) (*ImageStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, ErrBucketRequired
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	store := &ImageStore{
		bucket:        bucket,
		client:        client,
		uploadTimeout: defaultUploadTimeout,
	}
	for _, opt := range storeOpts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Close releases the underlying client.
func (s *ImageStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// ObjectExt returns the file extension for the content type, or an error when
// the type is not an accepted image format.
func ObjectExt(contentType string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	ext, ok := allowedImageTypes[normalized]
	if !ok {
		return "", ErrUnsupportedImageType
	}
	return ext, nil
}

// Upload writes the image bytes under objectName and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (StoredImage, error) {
	if s == nil || s.client == nil {
		return StoredImage{}, errors.New("storage: image store is not initialised")
	}
	objectName = strings.TrimSpace(objectName)
	if objectName == "" {
		return StoredImage{}, errors.New("storage: object name is required")
	}
	if _, err := ObjectExt(contentType); err != nil {
		return StoredImage{}, err
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(objectName).NewWriter(writeCtx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return StoredImage{}, fmt.Errorf("storage: write object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return StoredImage{}, fmt.Errorf("storage: finalise object %s: %w", objectName, err)
	}

	return StoredImage{
		URL:        fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName),
		ObjectName: objectName,
	}, nil
}

// Delete removes the object. Missing objects are treated as already deleted.
func (s *ImageStore) Delete(ctx context.Context, objectName string) error {
	if s == nil || s.client == nil {
		return errors.New("storage: image store is not initialised")
	}
	objectName = strings.TrimSpace(objectName)
	if objectName == "" {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: delete object %s: %w", objectName, err)
	}
	return nil
}
