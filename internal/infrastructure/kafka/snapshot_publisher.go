package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/intelligence-service/internal/application"
	"github.com/wms-platform/intelligence-service/pkg/logging"
	"github.com/wms-platform/intelligence-service/pkg/metrics"
)

const (
	intelligenceEventsTopic = "wms.intelligence.events"
	snapshotEventType       = "wms.intelligence.snapshot-generated"
	eventSource             = "intelligence-service"
)

// SnapshotPublisher publishes command center snapshots as domain events.
// Implements application.SnapshotPublisher.
type SnapshotPublisher struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewSnapshotPublisher creates a new SnapshotPublisher
func NewSnapshotPublisher(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *SnapshotPublisher {
	return &SnapshotPublisher{
		producer: producer,
		metrics:  m,
		logger:   logger.WithComponent("snapshot-publisher"),
	}
}

// PublishCommandCenter publishes a snapshot-generated event carrying the
// summary and any per-section errors. Consumers wanting full detail call
// the API; the event stays small on purpose.
func (p *SnapshotPublisher) PublishCommandCenter(ctx context.Context, snapshot *application.CommandCenterSnapshot) error {
	event := &Event{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Type:            snapshotEventType,
		Source:          eventSource,
		Subject:         snapshot.GeneratedAt.Format(time.RFC3339),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data: map[string]interface{}{
			"generatedAt": snapshot.GeneratedAt,
			"summary":     snapshot.Summary,
			"errors":      snapshot.Errors,
		},
	}

	err := p.producer.PublishEvent(ctx, intelligenceEventsTopic, event)
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(intelligenceEventsTopic, snapshotEventType, err == nil)
	}
	if err != nil {
		return fmt.Errorf("failed to publish snapshot event: %w", err)
	}

	p.logger.DebugContext(ctx, "Published command center snapshot event",
		"topic", intelligenceEventsTopic,
		"eventType", snapshotEventType,
	)

	return nil
}
