package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/intelligence-service/internal/domain"
	"github.com/wms-platform/intelligence-service/pkg/logging"
	"github.com/wms-platform/intelligence-service/pkg/metrics"
)

const activityEventsCollection = "activity_events"

// ActivityRepository implements domain.ActivityReader using MongoDB
type ActivityRepository struct {
	collection *mongo.Collection
	observer   *observer
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *ActivityRepository {
	repo := &ActivityRepository{
		collection: db.Collection(activityEventsCollection),
		observer:   newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ActivityRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds())),
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// EventsSince retrieves activity events with a timestamp at or after since.
func (r *ActivityRepository) EventsSince(ctx context.Context, since time.Time) ([]domain.CustomerActivityEvent, error) {
	var events []domain.CustomerActivityEvent

	err := r.observer.observe(ctx, activityEventsCollection, "events_since", func(ctx context.Context) error {
		filter := bson.M{"timestamp": bson.M{"$gte": since}}

		cursor, err := r.collection.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to query activity events: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &events); err != nil {
			return fmt.Errorf("failed to decode activity events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// LastActivityByCustomer returns the most recent event timestamp per
// customer across the full retained history.
func (r *ActivityRepository) LastActivityByCustomer(ctx context.Context) (map[string]time.Time, error) {
	latest := make(map[string]time.Time)

	err := r.observer.observe(ctx, activityEventsCollection, "last_activity_by_customer", func(ctx context.Context) error {
		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$customerId"},
				{Key: "lastSeen", Value: bson.D{{Key: "$max", Value: "$timestamp"}}},
			}}},
		}

		cursor, err := r.collection.Aggregate(ctx, pipeline)
		if err != nil {
			return fmt.Errorf("failed to aggregate activity events: %w", err)
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var row struct {
				CustomerID string    `bson:"_id"`
				LastSeen   time.Time `bson:"lastSeen"`
			}
			if err := cursor.Decode(&row); err != nil {
				return fmt.Errorf("failed to decode activity aggregate: %w", err)
			}
			latest[row.CustomerID] = row.LastSeen
		}
		return cursor.Err()
	})
	if err != nil {
		return nil, err
	}

	return latest, nil
}
