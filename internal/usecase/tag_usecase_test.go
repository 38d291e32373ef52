package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviary/internal/domain/entity"
	apperrors "aviary/pkg/errors"
)

type fakeTagRepo struct {
	tags map[string]*entity.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*entity.Tag)}
}

func (r *fakeTagRepo) Create(_ context.Context, tag *entity.Tag) error {
	if _, ok := r.tags[tag.Name]; ok {
		return apperrors.Conflict("Tag already exists")
	}
	r.tags[tag.Name] = tag
	return nil
}

func (r *fakeTagRepo) GetByName(_ context.Context, name string) (*entity.Tag, error) {
	tag, ok := r.tags[name]
	if !ok {
		return nil, apperrors.NotFound("Tag", nil)
	}
	return tag, nil
}

func (r *fakeTagRepo) List(_ context.Context) ([]*entity.Tag, error) {
	out := make([]*entity.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		out = append(out, tag)
	}
	return out, nil
}

func (r *fakeTagRepo) AddValue(_ context.Context, name string, value entity.TagValue) error {
	tag, ok := r.tags[name]
	if !ok {
		return apperrors.NotFound("Tag", nil)
	}
	if tag.HasValue(value.Value) {
		return apperrors.Conflict("Value already exists")
	}
	tag.Values = append(tag.Values, value)
	return nil
}

func (r *fakeTagRepo) RemoveValue(_ context.Context, name string, value string) error {
	tag, ok := r.tags[name]
	if !ok {
		return apperrors.NotFound("Tag", nil)
	}
	for i, v := range tag.Values {
		if v.Value == value {
			tag.Values = append(tag.Values[:i], tag.Values[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("Tag value", nil)
}

func (r *fakeTagRepo) Delete(_ context.Context, name string) error {
	if _, ok := r.tags[name]; !ok {
		return apperrors.NotFound("Tag", nil)
	}
	delete(r.tags, name)
	return nil
}

func (r *fakeTagRepo) EnsureSystemTags(ctx context.Context) error {
	for _, tag := range entity.SystemTags() {
		if err := r.Create(ctx, tag); err != nil && !apperrors.Is(err, "CONFLICT") {
			return err
		}
	}
	return nil
}

func TestCreateTagNormalizesName(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)

	tag, err := uc.Create(context.Background(), "Bird Name", []string{"Eagle", " Eagle ", "", "Owl"})
	require.NoError(t, err)

	assert.Equal(t, "bird_name", tag.Name)
	require.Len(t, tag.Values, 2)
	assert.Equal(t, "Eagle", tag.Values[0].Value)
	assert.Equal(t, "Owl", tag.Values[1].Value)
}

func TestCreateDuplicateTagConflicts(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	_, err := uc.Create(ctx, "city", nil)
	require.NoError(t, err)
	_, err = uc.Create(ctx, "City", nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "CONFLICT"))
}

func TestListHidesSystemTags(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSystemTags(ctx))
	repo.Create(ctx, &entity.Tag{Name: "bird_name"})

	tags, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "bird_name", tags[0].Name)
}

func TestAddValueRejectsEmpty(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)

	err := uc.AddValue(context.Background(), "bird_name", "   ", nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "BAD_REQUEST"))
}

func TestAddValueRequiresExistingParentTag(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	repo.Create(ctx, &entity.Tag{Name: "city"})

	err := uc.AddValue(ctx, "city", "Pune", map[string]string{"country": "India"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
}

func TestAddValueRequiresExistingParentValue(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	repo.Create(ctx, &entity.Tag{Name: "country", Values: []entity.TagValue{{Value: "India"}}})
	repo.Create(ctx, &entity.Tag{Name: "city"})

	err := uc.AddValue(ctx, "city", "Oslo", map[string]string{"country": "Norway"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
}

func TestAddValueWithValidParent(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	repo.Create(ctx, &entity.Tag{Name: "country", Values: []entity.TagValue{{Value: "India"}}})
	repo.Create(ctx, &entity.Tag{Name: "city"})

	require.NoError(t, uc.AddValue(ctx, "city", "Pune", map[string]string{"country": "India"}))

	tag, err := repo.GetByName(ctx, "city")
	require.NoError(t, err)
	require.Len(t, tag.Values, 1)
	assert.Equal(t, map[string]string{"country": "India"}, tag.Values[0].ParentInfo)
}

func TestFilteredValues(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	repo.Create(ctx, &entity.Tag{Name: "city", Values: []entity.TagValue{
		{Value: "Pune", ParentInfo: map[string]string{"country": "India"}},
		{Value: "Oslo", ParentInfo: map[string]string{"country": "Norway"}},
		{Value: "Atlantis"},
	}})

	all, err := uc.FilteredValues(ctx, "city", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune", "Oslo", "Atlantis"}, all)

	indian, err := uc.FilteredValues(ctx, "city", map[string]string{"country": "India"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune"}, indian)
}

func TestDeleteValueTrimsInput(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)
	ctx := context.Background()

	repo.Create(ctx, &entity.Tag{Name: "city", Values: []entity.TagValue{{Value: "Pune"}}})

	require.NoError(t, uc.DeleteValue(ctx, "city", " Pune "))
	tag, _ := repo.GetByName(ctx, "city")
	assert.Empty(t, tag.Values)
}

func TestDeleteSystemTagForbidden(t *testing.T) {
	repo := newFakeTagRepo()
	uc := NewTagUseCase(repo)

	err := uc.Delete(context.Background(), entity.TagDateClicked)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))
}
