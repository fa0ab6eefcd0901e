package main

import (
	"RelationshipManager/backend/go/internal/config"
	neo4jdb "RelationshipManager/backend/go/internal/database/neo4j"
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/internal/relationship_service/store"
	"RelationshipManager/backend/go/pkg/logger"
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// populate_data 清空数据库并写入示例人员和 CONHECE 关系。
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	seedLogger := logger.New("PopulateData", "", "")

	if err := run(cfg, seedLogger); err != nil {
		seedLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to populate sample data")
	}
}

// run 在返回前总会关闭 Neo4j 驱动，main 只在这之后退出进程。
func run(cfg *config.AppConfig, seedLogger *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := neo4jdb.NewClient(&cfg.Databases.Neo4j, seedLogger)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect to Neo4j: %w", err)
	}
	defer client.Close(context.Background())

	graphStore := store.NewNeo4jStore(client)

	seedLogger.Info("Limpando base de dados...")
	if err := graphStore.LimparBase(ctx); err != nil {
		return fmt.Errorf("clear database: %w", err)
	}

	seedLogger.Info("Criando pessoas e relacionamentos de exemplo...")
	if err := graphStore.PopularExemplo(ctx); err != nil {
		return fmt.Errorf("create sample data: %w", err)
	}
	if err := graphStore.EnsureSchema(ctx); err != nil {
		seedLogger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to ensure Neo4j indexes")
	}

	pessoas, relacionamentos, err := graphStore.Contagens(ctx)
	if err != nil {
		return fmt.Errorf("count sample data: %w", err)
	}
	seedLogger.WithPayload(map[string]interface{}{
		"pessoas":         pessoas,
		"relacionamentos": relacionamentos,
	}).Info("Dados de exemplo criados com sucesso")
	return nil
}
