package repository

import (
	"context"

	"aviary/internal/domain/entity"
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *entity.Photo) error
	GetByID(ctx context.Context, id string) (*entity.Photo, error)
	List(ctx context.Context) ([]*entity.Photo, error)
	Search(ctx context.Context, criteria entity.SearchCriteria) ([]*entity.Photo, error)
	UpdateTags(ctx context.Context, id string, tags map[string]string) error
	Delete(ctx context.Context, id string) error
}
