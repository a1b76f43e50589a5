package mongodb

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/intelligence-service/pkg/logging"
	"github.com/wms-platform/intelligence-service/pkg/metrics"
	"github.com/wms-platform/intelligence-service/pkg/tracing"
)

// observer records metrics, logs and spans for repository operations.
// Shared by every repository in this package.
type observer struct {
	database string
	metrics  *metrics.Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

func newObserver(database string, m *metrics.Metrics, logger *logging.Logger) *observer {
	return &observer{
		database: database,
		metrics:  m,
		logger:   logger.WithComponent("mongodb"),
		tracer:   otel.Tracer("mongodb"),
	}
}

// observe wraps one collection operation with a span, an operation
// metric and a query log entry.
func (o *observer) observe(ctx context.Context, collection, operation string, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "mongodb."+collection+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.DatabaseSpanAttributes("mongodb", o.database, operation, collection)...),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	success := err == nil
	if o.metrics != nil {
		o.metrics.RecordMongoDBOperation(collection, operation, success, duration)
	}
	o.logger.DatabaseQuery(ctx, collection, operation, duration, success)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
