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

const customersCollection = "customers"

// CustomerRepository implements domain.CustomerReader using MongoDB
type CustomerRepository struct {
	collection *mongo.Collection
	observer   *observer
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *CustomerRepository {
	repo := &CustomerRepository{
		collection: db.Collection(customersCollection),
		observer:   newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CustomerRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "active", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "parentId", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// ActiveCustomers retrieves all active customers, including branch
// accounts that roll up to a parent.
func (r *CustomerRepository) ActiveCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer

	err := r.observer.observe(ctx, customersCollection, "active_customers", func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, bson.M{"active": true})
		if err != nil {
			return fmt.Errorf("failed to query customers: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &customers); err != nil {
			return fmt.Errorf("failed to decode customers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return customers, nil
}
