package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"aviary/internal/domain/service"
)

// GCSBackend hosts photo bytes in a public Cloud Storage bucket. It is the
// migration target slot for moving photos off the third-party CDNs.
type GCSBackend struct {
	client     *storage.Client
	bucketName string
}

func NewGCSBackend(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSBackend, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSBackend{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (b *GCSBackend) Name() string {
	return "gcs"
}

func (b *GCSBackend) Upload(ctx context.Context, file io.Reader, filename string) (*service.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectName := fmt.Sprintf("photos/%s-%s%s", uuid.New().String(), time.Now().Format("20060102150405"), ext)

	obj := b.client.Bucket(b.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentTypeFor(filename)
	wc.CacheControl = "public, max-age=86400"

	size, err := io.Copy(wc, file)
	if err != nil {
		return nil, fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return nil, fmt.Errorf("failed to set ACL: %w", err)
	}

	return &service.UploadResult{
		URL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucketName, objectName),
		ID:   objectName,
		Size: size,
	}, nil
}

func (b *GCSBackend) Delete(ctx context.Context, id string) error {
	if err := b.client.Bucket(b.bucketName).Object(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (b *GCSBackend) Close() error {
	return b.client.Close()
}
