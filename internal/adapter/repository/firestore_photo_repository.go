package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"aviary/internal/domain/entity"
	"aviary/internal/domain/repository"
	"aviary/pkg/errors"
)

type firestorePhotoRepository struct {
	client *firestore.Client
}

func NewFirestorePhotoRepository(client *firestore.Client) repository.PhotoRepository {
	return &firestorePhotoRepository{
		client: client,
	}
}

// photoDoc covers both persisted shapes: the current one with a nested
// storage map, and the legacy flat one with url/fivemerr_id/size at the
// top level. Reads normalize into entity.Photo here, at the read
// boundary, so nothing downstream branches on shape.
type photoDoc struct {
	ID        string              `firestore:"id"`
	Filename  string              `firestore:"filename"`
	Tags      map[string]string   `firestore:"tags"`
	CreatedAt time.Time           `firestore:"created_at"`
	Storage   *entity.StorageInfo `firestore:"storage"`

	// legacy flat shape
	URL        string `firestore:"url"`
	FivemerrID string `firestore:"fivemerr_id"`
	Size       int64  `firestore:"size"`
}

func (d *photoDoc) toEntity(docID string) *entity.Photo {
	photo := &entity.Photo{
		ID:        d.ID,
		Filename:  d.Filename,
		Tags:      d.Tags,
		CreatedAt: d.CreatedAt,
	}
	if photo.ID == "" {
		photo.ID = docID
	}

	if d.Storage != nil {
		photo.Storage = *d.Storage
	} else {
		// legacy records predate backend selection, all of them lived on Fivemerr
		photo.Storage = entity.StorageInfo{
			Service: "fivemerr",
			URL:     d.URL,
			ID:      d.FivemerrID,
			Size:    d.Size,
		}
	}

	return photo
}

func (r *firestorePhotoRepository) Create(ctx context.Context, photo *entity.Photo) error {
	if photo.ID == "" {
		doc := r.client.Collection("photos").NewDoc()
		photo.ID = doc.ID
	}

	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.Collection("photos").Doc(photo.ID).Set(ctx, photo)
	if err != nil {
		return errors.Internal("Failed to create photo", err)
	}

	return nil
}

func (r *firestorePhotoRepository) GetByID(ctx context.Context, id string) (*entity.Photo, error) {
	doc, err := r.client.Collection("photos").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Photo", err)
		}
		return nil, errors.Internal("Failed to get photo", err)
	}

	var pd photoDoc
	if err := doc.DataTo(&pd); err != nil {
		return nil, errors.Internal("Failed to parse photo data", err)
	}

	return pd.toEntity(doc.Ref.ID), nil
}

func (r *firestorePhotoRepository) List(ctx context.Context) ([]*entity.Photo, error) {
	iter := r.client.Collection("photos").Documents(ctx)
	var photos []*entity.Photo

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate photos", err)
		}

		var pd photoDoc
		if err := doc.DataTo(&pd); err != nil {
			return nil, errors.Internal("Failed to parse photo data", err)
		}
		photos = append(photos, pd.toEntity(doc.Ref.ID))
	}

	return photos, nil
}

// Search scans the collection newest-first and evaluates the conjunctive
// criteria in memory. Mongo's case-insensitive $regex prefix match has no
// Firestore equivalent over arbitrary tags.* paths; the created_at index
// keeps the scan ordered.
func (r *firestorePhotoRepository) Search(ctx context.Context, criteria entity.SearchCriteria) ([]*entity.Photo, error) {
	query := r.client.Collection("photos").OrderBy("created_at", firestore.Desc)
	iter := query.Documents(ctx)

	photos := []*entity.Photo{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to search photos", err)
		}

		var pd photoDoc
		if err := doc.DataTo(&pd); err != nil {
			return nil, errors.Internal("Failed to parse photo data", err)
		}

		photo := pd.toEntity(doc.Ref.ID)
		if criteria.Matches(photo) {
			photos = append(photos, photo)
		}
	}

	return photos, nil
}

func (r *firestorePhotoRepository) UpdateTags(ctx context.Context, id string, tags map[string]string) error {
	ref := r.client.Collection("photos").Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "tags", Value: tags},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Photo", err)
		}
		return errors.Internal("Failed to update photo tags", err)
	}

	return nil
}

func (r *firestorePhotoRepository) Delete(ctx context.Context, id string) error {
	ref := r.client.Collection("photos").Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Photo", err)
		}
		return errors.Internal("Failed to delete photo", err)
	}

	return nil
}
