package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// 默认值，与原有部署脚本保持一致。
const (
	DefaultNeo4jURI         = "bolt://localhost:7687"
	DefaultNeo4jUsername    = "neo4j"
	DefaultNeo4jPassword    = "password123"
	DefaultNeo4jMaxAttempts = 5
	DefaultServerAddress    = ":8000"
	DefaultMaxProfundidade  = 6
	DefaultKafkaTopic       = "rede_eventos"
	DefaultCacheTTL         = "30s"
)

// Neo4jConfig 定义了 Neo4j 图数据库的连接配置。
type Neo4jConfig struct {
	Uri         string `yaml:"uri"`         // Neo4j 数据库URI (例如: "bolt://localhost:7687")
	Username    string `yaml:"username"`    // 用户名
	Password    string `yaml:"password"`    // 密码
	Database    string `yaml:"database"`    // 数据库名称，为空时使用服务器默认数据库
	MaxAttempts int    `yaml:"maxAttempts"` // 启动时的最大连接尝试次数
}

// RedisConfig 定义了 Redis 缓存的连接配置。
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // 是否启用统计缓存
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
	TTL      string `yaml:"ttl"`      // 缓存有效期，例如 "30s"
}

// KafkaConfig 定义了领域事件发布的 Kafka 配置。
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"` // 是否发布领域事件
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 事件主题
}

// DatabaseConfigs 包含所有外部存储的配置。
type DatabaseConfigs struct {
	Neo4j Neo4jConfig `yaml:"neo4j"` // Neo4j 数据库配置
	Redis RedisConfig `yaml:"redis"` // Redis 缓存配置
	Kafka KafkaConfig `yaml:"kafka"` // Kafka 消息队列配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address          string   `yaml:"address"`          // 监听地址
	FrontendDir      string   `yaml:"frontendDir"`      // 静态前端目录，不存在时 GET / 返回欢迎消息
	MaxProfundidade  int      `yaml:"maxProfundidade"`  // 网络遍历允许的最大深度
	CorsAllowOrigins []string `yaml:"corsAllowOrigins"` // 允许的跨域来源，"*" 表示全部
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了令牌桶限流器的配置。
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"` // 连续失败多少次后熔断
	MaxRequests      uint32 `yaml:"maxRequests"`      // 半开状态允许通过的请求数
	Timeout          string `yaml:"timeout"`          // 例如: "30s"
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	Server     ServerConfig     `yaml:"server"`     // HTTP 服务配置
	Databases  DatabaseConfigs  `yaml:"databases"`  // 数据库配置
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 文件不存在时不会报错，而是使用默认值；环境变量在文件之后应用，优先级最高。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 使用默认配置
	default:
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Databases.Neo4j.Uri = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		c.Databases.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Databases.Neo4j.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Databases.Redis.Address = v
		c.Databases.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Databases.Kafka.Brokers = strings.Split(v, ",")
		c.Databases.Kafka.Enabled = true
	}
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		c.Server.Address = v
	}
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "relationship_service"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultServerAddress
	}
	if c.Server.FrontendDir == "" {
		c.Server.FrontendDir = "frontend"
	}
	if c.Server.MaxProfundidade <= 0 {
		c.Server.MaxProfundidade = DefaultMaxProfundidade
	}
	if len(c.Server.CorsAllowOrigins) == 0 {
		c.Server.CorsAllowOrigins = []string{"*"}
	}

	neo := &c.Databases.Neo4j
	if neo.Uri == "" {
		neo.Uri = DefaultNeo4jURI
	}
	if neo.Username == "" {
		neo.Username = DefaultNeo4jUsername
	}
	if neo.Password == "" {
		neo.Password = DefaultNeo4jPassword
	}
	if neo.MaxAttempts <= 0 {
		neo.MaxAttempts = DefaultNeo4jMaxAttempts
	}

	if c.Databases.Redis.Address == "" {
		c.Databases.Redis.Address = "localhost:6379"
	}
	if c.Databases.Redis.TTL == "" {
		c.Databases.Redis.TTL = DefaultCacheTTL
	}
	if c.Databases.Kafka.Topic == "" {
		c.Databases.Kafka.Topic = DefaultKafkaTopic
	}

	rl := &c.Middleware.RateLimiter
	if rl.Rate <= 0 {
		rl.Rate = 50
	}
	if rl.Capacity <= 0 {
		rl.Capacity = 100
	}
	cb := &c.Middleware.CircuitBreaker
	if cb.FailureThreshold == 0 {
		cb.FailureThreshold = 5
	}
	if cb.MaxRequests == 0 {
		cb.MaxRequests = 1
	}
	if cb.Timeout == "" {
		cb.Timeout = "30s"
	}
}
