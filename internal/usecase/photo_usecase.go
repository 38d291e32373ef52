package usecase

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"aviary/internal/domain/entity"
	"aviary/internal/domain/repository"
	"aviary/internal/domain/service"
	"aviary/pkg/errors"
	"aviary/pkg/logger"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// BackendResolver selects a storage backend by service name, failing
// closed on unknown selectors.
type BackendResolver interface {
	Resolve(selector string) (service.StorageBackend, error)
}

type PhotoUseCase struct {
	photoRepo repository.PhotoRepository
	tagRepo   repository.TagRepository
	backends  BackendResolver
}

func NewPhotoUseCase(photoRepo repository.PhotoRepository, tagRepo repository.TagRepository, backends BackendResolver) *PhotoUseCase {
	return &PhotoUseCase{
		photoRepo: photoRepo,
		tagRepo:   tagRepo,
		backends:  backends,
	}
}

type UploadPhotoInput struct {
	File     io.Reader
	Filename string
	Tags     map[string]string
	Service  string
}

func (uc *PhotoUseCase) Upload(ctx context.Context, input UploadPhotoInput) (*entity.Photo, error) {
	ext := strings.ToLower(filepath.Ext(input.Filename))
	if !allowedExtensions[ext] {
		return nil, errors.BadRequest("File type not allowed", nil)
	}

	backend, err := uc.backends.Resolve(input.Service)
	if err != nil {
		return nil, err
	}

	result, err := backend.Upload(ctx, input.File, input.Filename)
	if err != nil {
		return nil, errors.Internal("Failed to upload photo", err)
	}

	tags := make(map[string]string, len(input.Tags)+2)
	for k, v := range input.Tags {
		tags[k] = v
	}
	stampDateTags(tags)

	photo := &entity.Photo{
		ID:        uuid.New().String(),
		Filename:  sanitizeFilename(input.Filename),
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
		Storage: entity.StorageInfo{
			Service: backend.Name(),
			URL:     result.URL,
			ID:      result.ID,
			Size:    result.Size,
		},
	}

	if err := uc.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}

	return photo, nil
}

// stampDateTags enforces the two system tags: a malformed or missing
// date_clicked is replaced with the current time, date_uploaded is set
// when absent.
func stampDateTags(tags map[string]string) {
	now := time.Now().UTC().Format(entity.DateTagLayout)

	if clicked, ok := tags[entity.TagDateClicked]; ok {
		if _, err := time.Parse(entity.DateTagLayout, clicked); err != nil {
			tags[entity.TagDateClicked] = now
		}
	} else {
		tags[entity.TagDateClicked] = now
	}

	if _, ok := tags[entity.TagDateUploaded]; !ok {
		tags[entity.TagDateUploaded] = now
	}
}

// sanitizeFilename strips any path component and keeps a conservative
// character set.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

func (uc *PhotoUseCase) List(ctx context.Context) ([]*entity.Photo, error) {
	return uc.photoRepo.List(ctx)
}

func (uc *PhotoUseCase) Search(ctx context.Context, criteria entity.SearchCriteria) ([]*entity.Photo, error) {
	if criteria.Empty() {
		return nil, errors.BadRequest("No search criteria provided", nil)
	}
	return uc.photoRepo.Search(ctx, criteria)
}

// Stats maps every registered tag to the count of photos per observed
// value; photos without the tag do not contribute.
func (uc *PhotoUseCase) Stats(ctx context.Context) (map[string]map[string]int, error) {
	tags, err := uc.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	photos, err := uc.photoRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]map[string]int, len(tags))
	for _, tag := range tags {
		counts := make(map[string]int)
		for _, photo := range photos {
			if value, ok := photo.Tags[tag.Name]; ok {
				counts[value]++
			}
		}
		stats[tag.Name] = counts
	}

	return stats, nil
}

// UpdateTags replaces the photo's tag map wholesale; this is not a merge.
func (uc *PhotoUseCase) UpdateTags(ctx context.Context, id string, tags map[string]string) error {
	return uc.photoRepo.UpdateTags(ctx, id, tags)
}

// Delete removes the catalog record. The backend-hosted bytes are deleted
// best effort: an upstream failure is logged and never blocks the user.
func (uc *PhotoUseCase) Delete(ctx context.Context, id string) error {
	photo, err := uc.photoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if backend, err := uc.backends.Resolve(photo.Storage.Service); err != nil {
		logger.Warn("Unknown storage service %q for photo %s, skipping remote delete", photo.Storage.Service, id)
	} else if err := backend.Delete(ctx, photo.Storage.ID); err != nil {
		logger.Warn("Failed to delete remote bytes for photo %s: %v", id, err)
	}

	return uc.photoRepo.Delete(ctx, id)
}
