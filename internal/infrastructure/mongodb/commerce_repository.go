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

const (
	cartsCollection       = "carts"
	salesOrdersCollection = "sales_orders"
)

// CommerceRepository implements domain.CommerceReader using MongoDB
type CommerceRepository struct {
	carts    *mongo.Collection
	orders   *mongo.Collection
	observer *observer
}

// NewCommerceRepository creates a new CommerceRepository
func NewCommerceRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *CommerceRepository {
	repo := &CommerceRepository{
		carts:    db.Collection(cartsCollection),
		orders:   db.Collection(salesOrdersCollection),
		observer: newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CommerceRepository) ensureIndexes(ctx context.Context) {
	cartIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}},
			Options: options.Index(),
		},
	}
	orderIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "orderDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "orderDate", Value: -1}},
		},
	}

	r.carts.Indexes().CreateMany(ctx, cartIndexes)
	r.orders.Indexes().CreateMany(ctx, orderIndexes)
}

// OpenCarts retrieves every cart that still has lines.
func (r *CommerceRepository) OpenCarts(ctx context.Context) ([]domain.Cart, error) {
	var carts []domain.Cart

	err := r.observer.observe(ctx, cartsCollection, "open_carts", func(ctx context.Context) error {
		filter := bson.M{"lines.0": bson.M{"$exists": true}}

		cursor, err := r.carts.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to query carts: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &carts); err != nil {
			return fmt.Errorf("failed to decode carts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return carts, nil
}

// OrdersSince retrieves accepted sales orders placed at or after since.
func (r *CommerceRepository) OrdersSince(ctx context.Context, since time.Time) ([]domain.SalesOrder, error) {
	var orders []domain.SalesOrder

	err := r.observer.observe(ctx, salesOrdersCollection, "orders_since", func(ctx context.Context) error {
		filter := bson.M{
			"orderDate": bson.M{"$gte": since},
			"status": bson.M{"$in": []string{
				domain.OrderStatusApproved,
				domain.OrderStatusPendingApproval,
			}},
		}

		cursor, err := r.orders.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to query sales orders: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &orders); err != nil {
			return fmt.Errorf("failed to decode sales orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}
