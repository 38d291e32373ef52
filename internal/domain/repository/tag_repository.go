package repository

import (
	"context"

	"aviary/internal/domain/entity"
)

type TagRepository interface {
	Create(ctx context.Context, tag *entity.Tag) error
	GetByName(ctx context.Context, name string) (*entity.Tag, error)
	// List returns every registered tag, system tags included.
	List(ctx context.Context) ([]*entity.Tag, error)
	AddValue(ctx context.Context, name string, value entity.TagValue) error
	// RemoveValue deletes a value whether it is stored as a bare string or
	// as an object; NotFound when nothing was removed.
	RemoveValue(ctx context.Context, name string, value string) error
	Delete(ctx context.Context, name string) error
	EnsureSystemTags(ctx context.Context) error
}
