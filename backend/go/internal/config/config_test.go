package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "REDIS_ADDR", "KAFKA_BROKERS", "SERVER_ADDRESS"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultNeo4jURI, cfg.Databases.Neo4j.Uri)
	assert.Equal(t, DefaultNeo4jUsername, cfg.Databases.Neo4j.Username)
	assert.Equal(t, DefaultNeo4jPassword, cfg.Databases.Neo4j.Password)
	assert.Equal(t, 5, cfg.Databases.Neo4j.MaxAttempts)
	assert.Equal(t, DefaultServerAddress, cfg.Server.Address)
	assert.Equal(t, DefaultMaxProfundidade, cfg.Server.MaxProfundidade)
	assert.Equal(t, []string{"*"}, cfg.Server.CorsAllowOrigins)
	assert.False(t, cfg.Databases.Redis.Enabled)
	assert.False(t, cfg.Databases.Kafka.Enabled)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: rede
logger:
  level: debug
server:
  address: ":9090"
  maxProfundidade: 3
databases:
  neo4j:
    uri: bolt://neo4j:7687
    username: admin
    password: secret
    maxAttempts: 2
  redis:
    enabled: true
    address: redis:6379
    ttl: 1m
  kafka:
    enabled: true
    brokers: ["kafka:9092"]
    topic: eventos
middleware:
  rateLimiter:
    enabled: true
    rate: 5
    capacity: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "rede", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Server.MaxProfundidade)
	assert.Equal(t, "bolt://neo4j:7687", cfg.Databases.Neo4j.Uri)
	assert.Equal(t, "admin", cfg.Databases.Neo4j.Username)
	assert.Equal(t, 2, cfg.Databases.Neo4j.MaxAttempts)
	assert.True(t, cfg.Databases.Redis.Enabled)
	assert.Equal(t, "1m", cfg.Databases.Redis.TTL)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Databases.Kafka.Brokers)
	assert.Equal(t, "eventos", cfg.Databases.Kafka.Topic)
	assert.True(t, cfg.Middleware.RateLimiter.Enabled)
	assert.Equal(t, 10, cfg.Middleware.RateLimiter.Capacity)
	// 未设置的字段仍然使用默认值
	assert.Equal(t, "30s", cfg.Middleware.CircuitBreaker.Timeout)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("databases:\n  neo4j:\n    uri: bolt://file:7687\n"), 0o644))

	t.Setenv("NEO4J_URI", "bolt://env:7687")
	t.Setenv("NEO4J_PASSWORD", "envpass")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://env:7687", cfg.Databases.Neo4j.Uri)
	assert.Equal(t, "envpass", cfg.Databases.Neo4j.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Databases.Kafka.Brokers)
	assert.True(t, cfg.Databases.Kafka.Enabled)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
