package usecase

import (
	"context"
	"fmt"
	"strings"

	"aviary/internal/domain/entity"
	"aviary/internal/domain/repository"
	"aviary/pkg/errors"
)

type TagUseCase struct {
	tagRepo repository.TagRepository
}

func NewTagUseCase(tagRepo repository.TagRepository) *TagUseCase {
	return &TagUseCase{
		tagRepo: tagRepo,
	}
}

func (uc *TagUseCase) Create(ctx context.Context, name string, values []string) (*entity.Tag, error) {
	tag := &entity.Tag{
		Name:   entity.NormalizeTagName(name),
		Values: make([]entity.TagValue, 0, len(values)),
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || tag.HasValue(v) {
			continue
		}
		tag.Values = append(tag.Values, entity.TagValue{Value: v})
	}

	if err := uc.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// List returns the user-defined tags; system tags stay hidden.
func (uc *TagUseCase) List(ctx context.Context) ([]*entity.Tag, error) {
	all, err := uc.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	tags := make([]*entity.Tag, 0, len(all))
	for _, tag := range all {
		if entity.IsSystemTag(tag.Name) {
			continue
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// AddValue inserts a value, optionally scoped to parent tag values. Every
// referenced parent tag and value must already exist.
func (uc *TagUseCase) AddValue(ctx context.Context, tagName, value string, parentInfo map[string]string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.BadRequest("Value cannot be empty", nil)
	}

	if _, err := uc.tagRepo.GetByName(ctx, tagName); err != nil {
		return err
	}

	for parentTag, parentValue := range parentInfo {
		parent, err := uc.tagRepo.GetByName(ctx, parentTag)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				return errors.NotFound(fmt.Sprintf("Parent tag %q", parentTag), nil)
			}
			return err
		}
		if !parent.HasValue(parentValue) {
			return errors.NotFound(fmt.Sprintf("Parent value %q in tag %q", parentValue, parentTag), nil)
		}
	}

	tagValue := entity.TagValue{Value: value}
	if len(parentInfo) > 0 {
		tagValue.ParentInfo = parentInfo
	}

	return uc.tagRepo.AddValue(ctx, tagName, tagValue)
}

// FilteredValues returns the value strings visible under the supplied
// parent filters; with no filters every value is returned.
func (uc *TagUseCase) FilteredValues(ctx context.Context, tagName string, parentFilters map[string]string) ([]string, error) {
	tag, err := uc.tagRepo.GetByName(ctx, tagName)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(tag.Values))
	for _, v := range tag.Values {
		if len(parentFilters) > 0 && !v.MatchesParents(parentFilters) {
			continue
		}
		values = append(values, v.Value)
	}

	return values, nil
}

func (uc *TagUseCase) DeleteValue(ctx context.Context, tagName, value string) error {
	return uc.tagRepo.RemoveValue(ctx, tagName, strings.TrimSpace(value))
}

func (uc *TagUseCase) Delete(ctx context.Context, tagName string) error {
	if entity.IsSystemTag(tagName) {
		return errors.Forbidden("Cannot delete system tags", nil)
	}
	return uc.tagRepo.Delete(ctx, tagName)
}
