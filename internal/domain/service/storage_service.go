package service

import (
	"context"
	"io"
)

// UploadResult is the backend-agnostic shape every storage implementation
// returns. Callers persist it opaquely under the photo's storage field.
type UploadResult struct {
	URL  string
	ID   string
	Size int64
}

// StorageBackend abstracts an external image-hosting provider.
type StorageBackend interface {
	Name() string
	Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error)
	Delete(ctx context.Context, id string) error
}
