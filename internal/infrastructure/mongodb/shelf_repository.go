package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/intelligence-service/internal/domain"
	"github.com/wms-platform/intelligence-service/pkg/logging"
	"github.com/wms-platform/intelligence-service/pkg/metrics"
)

const shelfLocationsCollection = "shelf_locations"

// ShelfRepository implements domain.ShelfReader using MongoDB
type ShelfRepository struct {
	collection *mongo.Collection
	observer   *observer
}

// NewShelfRepository creates a new ShelfRepository
func NewShelfRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *ShelfRepository {
	repo := &ShelfRepository{
		collection: db.Collection(shelfLocationsCollection),
		observer:   newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ShelfRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "productCode", Value: 1}, {Key: "warehouseId", Value: 1}},
			Options: options.Index(),
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// AllLocations retrieves every shelf assignment.
func (r *ShelfRepository) AllLocations(ctx context.Context) ([]domain.ShelfLocation, error) {
	var locations []domain.ShelfLocation

	err := r.observer.observe(ctx, shelfLocationsCollection, "all_locations", func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("failed to query shelf locations: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &locations); err != nil {
			return fmt.Errorf("failed to decode shelf locations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return locations, nil
}
