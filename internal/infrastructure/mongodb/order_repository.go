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

const ordersCollection = "pending_orders"

// OrderRepository implements domain.OrderReader using MongoDB
type OrderRepository struct {
	collection *mongo.Collection
	observer   *observer
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *OrderRepository {
	repo := &OrderRepository{
		collection: db.Collection(ordersCollection),
		observer:   newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "series", Value: 1}, {Key: "orderDate", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "orderDate", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "customerId", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// OpenOrders retrieves open orders in date order, optionally filtered
// by series, capped at limit.
func (r *OrderRepository) OpenOrders(ctx context.Context, seriesFilter string, limit int) ([]domain.PendingOrder, error) {
	filter := bson.M{}
	if seriesFilter != "" {
		filter["series"] = seriesFilter
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: 1}, {Key: "orderId", Value: 1}}).
		SetLimit(int64(limit))

	return r.find(ctx, "open_orders", filter, opts)
}

// AllOpenOrders retrieves every open order for reservation accounting.
func (r *OrderRepository) AllOpenOrders(ctx context.Context) ([]domain.PendingOrder, error) {
	return r.find(ctx, "all_open_orders", bson.M{}, options.Find())
}

// PendingApprovalOrders retrieves orders awaiting approval, oldest first.
func (r *OrderRepository) PendingApprovalOrders(ctx context.Context, limit int) ([]domain.PendingOrder, error) {
	filter := bson.M{"status": domain.OrderStatusPendingApproval}
	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: 1}, {Key: "orderId", Value: 1}}).
		SetLimit(int64(limit))

	return r.find(ctx, "pending_approval_orders", filter, opts)
}

func (r *OrderRepository) find(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]domain.PendingOrder, error) {
	var orders []domain.PendingOrder

	err := r.observer.observe(ctx, ordersCollection, operation, func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("failed to query orders: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &orders); err != nil {
			return fmt.Errorf("failed to decode orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}
