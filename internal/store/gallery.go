package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gethub-app/gethub/internal/model"
)

// CreateGalleryItem stores an achievement entry and fills in its id.
func (s *Store) CreateGalleryItem(ctx context.Context, item *model.GalleryItem) error {
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()
	_, err := s.gallery.InsertOne(ctx, item)
	return err
}

// ListGalleryItems returns all achievement entries, newest first.
func (s *Store) ListGalleryItems(ctx context.Context) ([]model.GalleryItem, error) {
	cursor, err := s.gallery.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []model.GalleryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
