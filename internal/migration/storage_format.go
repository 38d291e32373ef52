package migration

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"aviary/pkg/logger"
)

// MigrateStorageFormat rewrites legacy photo documents that carry
// url/fivemerr_id/size at the top level into the nested storage shape.
// Legacy records all lived on Fivemerr. Idempotent: already-migrated
// documents are skipped.
func MigrateStorageFormat(ctx context.Context, client *firestore.Client) (int, error) {
	iter := client.Collection("photos").Documents(ctx)
	updated := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return updated, err
		}

		data := doc.Data()
		if _, migrated := data["storage"]; migrated {
			continue
		}
		url, ok := data["url"].(string)
		if !ok || url == "" {
			continue
		}

		storage := map[string]interface{}{
			"service": "fivemerr",
			"url":     url,
			"id":      data["fivemerr_id"],
			"size":    data["size"],
		}

		_, err = doc.Ref.Update(ctx, []firestore.Update{
			{Path: "storage", Value: storage},
			{Path: "url", Value: firestore.Delete},
			{Path: "fivemerr_id", Value: firestore.Delete},
			{Path: "size", Value: firestore.Delete},
		})
		if err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}

// Run executes every migration in order.
func Run(ctx context.Context, client *firestore.Client) error {
	logger.Info("Starting database migrations...")

	count, err := MigrateStorageFormat(ctx, client)
	if err != nil {
		return err
	}
	logger.Info("Migration 1: Updated %d photos to new storage format", count)

	logger.Info("All database migrations completed successfully")
	return nil
}
