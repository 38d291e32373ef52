package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"aviary/internal/domain/service"
)

type CloudinaryBackend struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryBackend(cloudName, apiKey, apiSecret, folder string) (*CloudinaryBackend, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryBackend{
		cld:    cld,
		folder: folder,
	}, nil
}

func (b *CloudinaryBackend) Name() string {
	return "cloudinary"
}

func (b *CloudinaryBackend) Upload(ctx context.Context, file io.Reader, filename string) (*service.UploadResult, error) {
	result, err := b.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: b.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload failed: %s", result.Error.Message)
	}

	return &service.UploadResult{
		URL:  result.SecureURL,
		ID:   result.PublicID,
		Size: int64(result.Bytes),
	}, nil
}

func (b *CloudinaryBackend) Delete(ctx context.Context, id string) error {
	result, err := b.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: id,
	})
	if err != nil {
		return fmt.Errorf("cloudinary deletion failed: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}

	return nil
}
