package main

import (
	"RelationshipManager/backend/go/internal/config"
	kafkadb "RelationshipManager/backend/go/internal/database/kafka"
	neo4jdb "RelationshipManager/backend/go/internal/database/neo4j"
	redisdb "RelationshipManager/backend/go/internal/database/redis"
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/internal/relationship_service/api"
	"RelationshipManager/backend/go/internal/relationship_service/consumer"
	"RelationshipManager/backend/go/internal/relationship_service/publisher"
	"RelationshipManager/backend/go/internal/relationship_service/service"
	"RelationshipManager/backend/go/internal/relationship_service/store"
	pkghttp "RelationshipManager/backend/go/pkg/http"
	"RelationshipManager/backend/go/pkg/logger"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	serviceLogger := logger.New("RelationshipService", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Neo4j, retrying with backoff
	neo4jClient := neo4jdb.NewClient(&cfg.Databases.Neo4j, serviceLogger)
	if err := neo4jClient.Connect(ctx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to connect to Neo4j")
	}
	graphStore := store.NewNeo4jStore(neo4jClient)
	if err := graphStore.EnsureSchema(ctx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to ensure Neo4j indexes")
	}

	// Optional Redis cache for estatisticas
	var cache service.Cache
	var rdb *redis.Client
	if cfg.Databases.Redis.Enabled {
		ttl, err := time.ParseDuration(cfg.Databases.Redis.TTL)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Invalid Redis cache TTL")
		}
		rdb, err = redisdb.NewClient(ctx, &cfg.Databases.Redis, serviceLogger)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Redis unavailable, estatisticas cache disabled")
		} else {
			cache = service.NewRedisCache(rdb, ttl)
		}
	}

	// Optional Kafka event publishing and relay
	var eventPublisher service.Publisher
	var kafkaClient *kafkadb.Client
	if cfg.Databases.Kafka.Enabled {
		kafkaClient, err = kafkadb.NewClient(&cfg.Databases.Kafka, serviceLogger)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Kafka unavailable, domain events will not be published")
		} else {
			eventPublisher = publisher.NewEventPublisher(kafkaClient.Writer, serviceLogger)
			if addr, err := kafkaClient.ControllerAddress(); err == nil {
				serviceLogger.WithPayload(map[string]interface{}{"controller": addr}).Info("Connected to Kafka")
			}
		}
	}

	// Create components with logger injection
	connManager := service.NewConnectionManager()
	relService := service.NewRelationshipService(graphStore, cache, eventPublisher, connManager, serviceLogger, cfg.Server.MaxProfundidade)
	relService.RegisterHealthCheck("neo4j", neo4jClient.HealthCheck)
	if rdb != nil {
		relService.RegisterHealthCheck("redis", func(ctx context.Context) error { return redisdb.HealthCheck(ctx, rdb) })
	}

	var eventConsumer *consumer.EventConsumer
	if kafkaClient != nil {
		relService.RegisterHealthCheck("kafka", kafkaClient.HealthCheck)
		eventConsumer = consumer.NewEventConsumer(cfg.Databases.Kafka.Brokers, cfg.Databases.Kafka.Topic, consumerGroup(cfg.App.Name), serviceLogger)
		relService.EnableEventRelay()
		eventConsumer.Start(ctx, relService.HandleEvento)
		serviceLogger.Info("Kafka event consumer started")
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(api.NewHandler(relService, serviceLogger), cfg.Server, serviceLogger)

	srv, err := pkghttp.NewServer(cfg, pkghttp.WithLogger(serviceLogger))
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create HTTP server")
	}
	srv.Handle("/", router)
	serviceLogger.WithPayload(map[string]interface{}{
		"address":         srv.Addr(),
		"maxProfundidade": cfg.Server.MaxProfundidade,
		"kafkaRelay":      eventConsumer != nil,
		"redisCache":      cache != nil,
	}).Info("Relationship API configured")

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server forced to shutdown")
	}

	cancel()
	if eventConsumer != nil {
		if err := eventConsumer.Close(); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Kafka consumer")
		}
		<-eventConsumer.Done()
	}
	// 同时关闭事件发布使用的 writer
	if err := kafkaClient.Close(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Kafka client")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Redis client")
		}
	}
	neo4jClient.Close(shutdownCtx)

	serviceLogger.Info("Server gracefully stopped")
}

// consumerGroup 为每个实例生成独立的消费组，使所有实例都收到完整的事件流。
func consumerGroup(app string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = uuid.New().String()
	}
	return app + "-ws-" + host
}
