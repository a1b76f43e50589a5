package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/intelligence-service/internal/application"
	"github.com/wms-platform/intelligence-service/internal/infrastructure/clients"
	kafkaAdapter "github.com/wms-platform/intelligence-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/intelligence-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/intelligence-service/pkg/logging"
	"github.com/wms-platform/intelligence-service/pkg/metrics"
	"github.com/wms-platform/intelligence-service/pkg/middleware"
	"github.com/wms-platform/intelligence-service/pkg/tracing"
)

const serviceName = "intelligence-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting intelligence-service API")

	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB
	mongoClient, err := mongoRepo.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer and snapshot publisher
	var publisher application.SnapshotPublisher
	if config.SnapshotEventsEnabled {
		producer := kafkaAdapter.NewProducer(config.Kafka)
		defer producer.Close()
		publisher = kafkaAdapter.NewSnapshotPublisher(producer, m, logger)
		logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)
	} else {
		logger.Info("Snapshot events disabled")
	}

	// Initialize repositories
	db := mongoClient.Database()
	orderRepo := mongoRepo.NewOrderRepository(db, m, logger)
	catalogRepo := mongoRepo.NewCatalogRepository(db, m, logger)
	shelfRepo := mongoRepo.NewShelfRepository(db, m, logger)
	workflowRepo := mongoRepo.NewWorkflowRepository(db, m, logger)
	customerRepo := mongoRepo.NewCustomerRepository(db, m, logger)
	activityRepo := mongoRepo.NewActivityRepository(db, m, logger)
	commerceRepo := mongoRepo.NewCommerceRepository(db, m, logger)

	// Initialize ERP credit client
	creditClient := clients.NewCreditServiceClient(config.CreditServiceURL, m, logger)
	logger.Info("Credit service client initialized", "url", config.CreditServiceURL)

	// Initialize intelligence engines
	atpEngine := application.NewATPEngine(orderRepo, catalogRepo, application.DefaultATPWeights())
	orchestrationPlanner := application.NewOrchestrationPlanner(atpEngine, workflowRepo, application.DefaultWaveParams())
	substitutionEngine := application.NewSubstitutionEngine(atpEngine, catalogRepo, application.DefaultSubstitutionWeights())
	intentScorer := application.NewIntentScorer(customerRepo, activityRepo, commerceRepo, application.DefaultIntentWeights())
	riskEngine := application.NewRiskEngine(orderRepo, creditClient, application.DefaultRiskWeights())
	qualityEngine := application.NewDataQualityEngine(catalogRepo, shelfRepo, orderRepo, application.DefaultQualityWeights())

	commandCenter := application.NewCommandCenter(
		atpEngine,
		orchestrationPlanner,
		substitutionEngine,
		intentScorer,
		riskEngine,
		qualityEngine,
		publisher,
		logger,
	)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middlewareConfig.AllowedOrigins = config.AllowedOrigins
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(middleware.DefaultTracingConfig(serviceName)))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// Intelligence API routes
	api := router.Group("/api/v1")
	{
		intelligence := api.Group("/intelligence")
		{
			intelligence.GET("/atp", atpHandler(atpEngine, m, logger))
			intelligence.GET("/orchestration", orchestrationHandler(orchestrationPlanner, m, logger))
			intelligence.GET("/substitutions", substitutionsHandler(substitutionEngine, m, logger))
			intelligence.GET("/customers/intent", customerIntentHandler(intentScorer, m, logger))
			intelligence.GET("/risk", riskHandler(riskEngine, m, logger))
			intelligence.GET("/data-quality", dataQualityHandler(qualityEngine, m, logger))
			intelligence.GET("/command-center", commandCenterHandler(commandCenter, m, logger))
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr            string
	MongoDB               *mongoRepo.Config
	Kafka                 *kafkaAdapter.Config
	CreditServiceURL      string
	SnapshotEventsEnabled bool
	AllowedOrigins        []string
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8010"),
		MongoDB: &mongoRepo.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "intelligence_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafkaAdapter.Config{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		CreditServiceURL:      getEnv("CREDIT_SERVICE_URL", "http://localhost:8020"),
		SnapshotEventsEnabled: getEnv("SNAPSHOT_EVENTS_ENABLED", "true") == "true",
		AllowedOrigins:        strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers
func atpHandler(engine *application.ATPEngine, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.OrderQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"query.series":     query.Series,
			"query.orderLimit": query.Limit(),
		})

		start := time.Now()
		snapshot, err := engine.Snapshot(c.Request.Context(), query)
		m.RecordSnapshot("atp", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		m.ShortageQuantity.Set(snapshot.TotalShortageQty)
		m.LowCoverageOrders.Set(float64(snapshot.LowCoverageCount()))

		c.JSON(http.StatusOK, snapshot)
	}
}

func orchestrationHandler(planner *application.OrchestrationPlanner, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.OrderQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		start := time.Now()
		snapshot, err := planner.Snapshot(c.Request.Context(), query)
		m.RecordSnapshot("orchestration", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}

func substitutionsHandler(engine *application.SubstitutionEngine, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.OrderQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		start := time.Now()
		snapshot, err := engine.Snapshot(c.Request.Context(), query)
		m.RecordSnapshot("substitutions", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}

func customerIntentHandler(scorer *application.IntentScorer, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.CustomerQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		start := time.Now()
		snapshot, err := scorer.Snapshot(c.Request.Context(), query)
		m.RecordSnapshot("customer_intent", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		m.HotCustomers.Set(float64(snapshot.HotCount))

		c.JSON(http.StatusOK, snapshot)
	}
}

func riskHandler(engine *application.RiskEngine, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.RiskQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		start := time.Now()
		snapshot, err := engine.Snapshot(c.Request.Context(), query)
		m.RecordSnapshot("risk", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		m.OrdersBlocked.Set(float64(snapshot.BlockCount))

		c.JSON(http.StatusOK, snapshot)
	}
}

func dataQualityHandler(engine *application.DataQualityEngine, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		start := time.Now()
		snapshot, err := engine.Snapshot(c.Request.Context())
		m.RecordSnapshot("data_quality", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		m.DataQualityHealth.Set(float64(snapshot.HealthScore))

		c.JSON(http.StatusOK, snapshot)
	}
}

func commandCenterHandler(center *application.CommandCenter, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.CommandCenterQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"query.series":        query.Series,
			"query.orderLimit":    query.OrderLimit,
			"query.customerLimit": query.CustomerLimit,
		})

		start := time.Now()
		snapshot, err := center.Snapshot(c.Request.Context(), query)
		m.RecordSnapshot("command_center", err == nil, time.Since(start))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		m.ShortageQuantity.Set(snapshot.Summary.ShortageQty)
		m.LowCoverageOrders.Set(float64(snapshot.Summary.LowCoverageOrders))
		m.OrdersBlocked.Set(float64(snapshot.Summary.OrdersBlocked))
		m.HotCustomers.Set(float64(snapshot.Summary.HotCustomers))

		if len(snapshot.Errors) > 0 {
			c.JSON(http.StatusPartialContent, snapshot)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}
