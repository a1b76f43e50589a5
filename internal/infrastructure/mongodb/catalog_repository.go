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

const productsCollection = "products"

// CatalogRepository implements domain.CatalogReader using MongoDB
type CatalogRepository struct {
	collection *mongo.Collection
	observer   *observer
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *CatalogRepository {
	repo := &CatalogRepository{
		collection: db.Collection(productsCollection),
		observer:   newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CatalogRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "active", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// AllProducts retrieves the full catalog, including inactive products.
func (r *CatalogRepository) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return r.find(ctx, "all_products", bson.M{})
}

// ActiveProducts retrieves only products currently offered for sale.
func (r *CatalogRepository) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	return r.find(ctx, "active_products", bson.M{"active": true})
}

func (r *CatalogRepository) find(ctx context.Context, operation string, filter bson.M) ([]domain.Product, error) {
	var products []domain.Product

	err := r.observer.observe(ctx, productsCollection, operation, func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to query products: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &products); err != nil {
			return fmt.Errorf("failed to decode products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}
