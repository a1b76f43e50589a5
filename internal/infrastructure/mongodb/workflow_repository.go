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

const workflowStatesCollection = "workflow_states"

// WorkflowRepository implements domain.WorkflowReader using MongoDB
type WorkflowRepository struct {
	collection *mongo.Collection
	observer   *observer
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *WorkflowRepository {
	repo := &WorkflowRepository{
		collection: db.Collection(workflowStatesCollection),
		observer:   newObserver(db.Name(), m, logger),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *WorkflowRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "stage", Value: 1}, {Key: "pickerId", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// StatesByOrderIDs retrieves workflow states for the given orders,
// keyed by order ID. Orders with no state are simply absent.
func (r *WorkflowRepository) StatesByOrderIDs(ctx context.Context, orderIDs []string) (map[string]domain.WorkflowState, error) {
	states := make(map[string]domain.WorkflowState, len(orderIDs))
	if len(orderIDs) == 0 {
		return states, nil
	}

	err := r.observer.observe(ctx, workflowStatesCollection, "states_by_order_ids", func(ctx context.Context) error {
		filter := bson.M{"orderId": bson.M{"$in": orderIDs}}

		cursor, err := r.collection.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to query workflow states: %w", err)
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var state domain.WorkflowState
			if err := cursor.Decode(&state); err != nil {
				return fmt.Errorf("failed to decode workflow state: %w", err)
			}
			states[state.OrderID] = state
		}
		return cursor.Err()
	})
	if err != nil {
		return nil, err
	}

	return states, nil
}
