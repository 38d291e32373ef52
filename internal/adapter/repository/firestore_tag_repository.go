package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"aviary/internal/domain/entity"
	"aviary/internal/domain/repository"
	"aviary/pkg/errors"
)

type firestoreTagRepository struct {
	client *firestore.Client
}

func NewFirestoreTagRepository(client *firestore.Client) repository.TagRepository {
	return &firestoreTagRepository{
		client: client,
	}
}

// Tag values exist in two historical forms: bare strings and
// {value, parent_info} maps. decodeTagValues normalizes both; writes
// always produce the object form.
func decodeTagValues(raw interface{}) []entity.TagValue {
	items, ok := raw.([]interface{})
	if !ok {
		return []entity.TagValue{}
	}

	values := make([]entity.TagValue, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			values = append(values, entity.TagValue{Value: v})
		case map[string]interface{}:
			tv := entity.TagValue{}
			if s, ok := v["value"].(string); ok {
				tv.Value = s
			}
			if parents, ok := v["parent_info"].(map[string]interface{}); ok {
				tv.ParentInfo = make(map[string]string, len(parents))
				for parentTag, parentValue := range parents {
					if s, ok := parentValue.(string); ok {
						tv.ParentInfo[parentTag] = s
					}
				}
			}
			values = append(values, tv)
		}
	}
	return values
}

func encodeTagValue(v entity.TagValue) map[string]interface{} {
	encoded := map[string]interface{}{"value": v.Value}
	if len(v.ParentInfo) > 0 {
		encoded["parent_info"] = v.ParentInfo
	}
	return encoded
}

// removeValueFromRaw drops the target value from the raw array in either
// stored form, preserving every other element untouched.
func removeValueFromRaw(raw []interface{}, value string) ([]interface{}, bool) {
	kept := make([]interface{}, 0, len(raw))
	removed := false
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if v == value {
				removed = true
				continue
			}
		case map[string]interface{}:
			if s, ok := v["value"].(string); ok && s == value {
				removed = true
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept, removed
}

func tagFromDoc(doc *firestore.DocumentSnapshot) *entity.Tag {
	data := doc.Data()
	tag := &entity.Tag{
		Name:   doc.Ref.ID,
		Values: decodeTagValues(data["values"]),
	}
	if name, ok := data["name"].(string); ok && name != "" {
		tag.Name = name
	}
	if displayName, ok := data["display_name"].(string); ok {
		tag.DisplayName = displayName
	}
	return tag
}

func (r *firestoreTagRepository) tagRef(name string) *firestore.DocumentRef {
	return r.client.Collection("tags").Doc(name)
}

func (r *firestoreTagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	ref := r.tagRef(tag.Name)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err == nil {
			return errors.Conflict("Tag already exists")
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		values := make([]interface{}, 0, len(tag.Values))
		for _, v := range tag.Values {
			values = append(values, encodeTagValue(v))
		}

		data := map[string]interface{}{
			"name":   tag.Name,
			"values": values,
		}
		if tag.DisplayName != "" {
			data["display_name"] = tag.DisplayName
		}
		return tx.Set(ref, data)
	})
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return err
		}
		return errors.Internal("Failed to create tag", err)
	}

	return nil
}

func (r *firestoreTagRepository) GetByName(ctx context.Context, name string) (*entity.Tag, error) {
	doc, err := r.tagRef(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Tag", err)
		}
		return nil, errors.Internal("Failed to get tag", err)
	}

	return tagFromDoc(doc), nil
}

func (r *firestoreTagRepository) List(ctx context.Context) ([]*entity.Tag, error) {
	iter := r.client.Collection("tags").Documents(ctx)
	var tags []*entity.Tag

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate tags", err)
		}
		tags = append(tags, tagFromDoc(doc))
	}

	return tags, nil
}

func (r *firestoreTagRepository) AddValue(ctx context.Context, name string, value entity.TagValue) error {
	ref := r.tagRef(name)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		raw, _ := doc.Data()["values"].([]interface{})
		for _, existing := range decodeTagValues(raw) {
			if existing.Value == value.Value {
				return errors.Conflict("Value already exists")
			}
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "values", Value: append(raw, encodeTagValue(value))},
		})
	})
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return err
		}
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Tag", err)
		}
		return errors.Internal("Failed to add tag value", err)
	}

	return nil
}

// RemoveValue rewrites the values array without the target, matching the
// bare-string and object forms in one pass. Mongo needed two $pull
// attempts for the same effect.
func (r *firestoreTagRepository) RemoveValue(ctx context.Context, name string, value string) error {
	ref := r.tagRef(name)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		raw, _ := doc.Data()["values"].([]interface{})
		kept, removed := removeValueFromRaw(raw, value)
		if !removed {
			return errors.NotFound("Value", nil)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "values", Value: kept},
		})
	})
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return err
		}
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Tag", err)
		}
		return errors.Internal("Failed to remove tag value", err)
	}

	return nil
}

func (r *firestoreTagRepository) Delete(ctx context.Context, name string) error {
	ref := r.tagRef(name)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Tag", err)
		}
		return errors.Internal("Failed to delete tag", err)
	}

	return nil
}

// EnsureSystemTags seeds date_clicked/date_uploaded without touching
// existing documents. Safe to run on every startup.
func (r *firestoreTagRepository) EnsureSystemTags(ctx context.Context) error {
	for _, tag := range entity.SystemTags() {
		err := r.Create(ctx, tag)
		if err != nil && !errors.Is(err, "CONFLICT") {
			return err
		}
	}
	return nil
}
