package neo4j

import (
	"RelationshipManager/backend/go/internal/config"
	"RelationshipManager/backend/go/pkg/logger"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrNotConnected 在 Connect 成功之前获取会话时返回。
var ErrNotConnected = errors.New("neo4j: 数据库未连接")

// verifyQuery 是连接建立后用于验证的简单查询。
const verifyQuery = "RETURN 1 AS test"

// dialFunc 创建驱动并验证连接，测试中可替换。
type dialFunc func(ctx context.Context, cfg *config.Neo4jConfig) (neo4j.DriverWithContext, error)

// sleepFunc 在两次连接尝试之间等待，测试中可替换。
type sleepFunc func(ctx context.Context, d time.Duration) error

// Client 持有到 Neo4j 的唯一驱动实例，由 main 显式创建并注入到 store 中。
type Client struct {
	driver neo4j.DriverWithContext
	cfg    *config.Neo4jConfig
	log    *logger.Logger

	dial  dialFunc
	sleep sleepFunc
}

// NewClient 创建一个尚未连接的 Client。
func NewClient(cfg *config.Neo4jConfig, log *logger.Logger) *Client {
	return &Client{
		cfg:   cfg,
		log:   log,
		dial:  dial,
		sleep: sleepCtx,
	}
}

// Connect 建立连接并执行验证查询。失败时按 2^attempt 秒指数退避重试，
// 最多尝试 cfg.MaxAttempts 次；全部失败时返回最后一次的错误。
func (c *Client) Connect(ctx context.Context) error {
	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultNeo4jMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		driver, err := c.dial(ctx, c.cfg)
		if err == nil {
			c.driver = driver
			c.log.WithPayload(map[string]interface{}{"uri": c.cfg.Uri, "attempt": attempt}).Info("✅ 成功连接到 Neo4j!")
			return nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		wait := Backoff(attempt)
		c.log.WithPayload(map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"wait_seconds": wait.Seconds(),
			"cause":        err.Error(),
		}).Warn("❌ 连接 Neo4j 失败，稍后重试")

		if err := c.sleep(ctx, wait); err != nil {
			return fmt.Errorf("等待重连时被取消: %w", err)
		}
	}

	return fmt.Errorf("无法连接到 Neo4j 数据库 (已尝试 %d 次): %w", maxAttempts, lastErr)
}

// Backoff 返回第 attempt 次失败后的等待时长：2^attempt 秒，没有上限。
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// Close 安全地关闭与 Neo4j 的连接；从未连接时为空操作。
func (c *Client) Close(ctx context.Context) {
	if c.driver == nil {
		return
	}
	if err := c.driver.Close(ctx); err != nil {
		c.log.WithPayload(map[string]interface{}{"cause": err.Error()}).Warn("关闭 Neo4j 驱动失败")
	}
	c.driver = nil
}

// HealthCheck 检查 Neo4j 连接的健康状况。
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.driver == nil {
		return ErrNotConnected
	}
	return c.driver.VerifyConnectivity(ctx)
}

// Session 返回绑定到现有驱动的新会话，调用方负责关闭。
func (c *Client) Session(ctx context.Context, mode neo4j.AccessMode) (neo4j.SessionWithContext, error) {
	if c.driver == nil {
		return nil, ErrNotConnected
	}
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.cfg.Database,
	}), nil
}

// ExecuteWrite 在一个自动管理的写事务中执行 Cypher 查询。
func (c *Client) ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (interface{}, error)) (interface{}, error) {
	session, err := c.Session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("执行 Neo4j 写事务失败: %w", err)
	}
	return result, nil
}

// ExecuteRead 在一个自动管理的读事务中执行 Cypher 查询。
func (c *Client) ExecuteRead(ctx context.Context, work func(tx neo4j.ManagedTransaction) (interface{}, error)) (interface{}, error) {
	session, err := c.Session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("执行 Neo4j 读事务失败: %w", err)
	}
	return result, nil
}

func dial(ctx context.Context, cfg *config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.Uri, auth, func(conf *neo4j.Config) {
		conf.MaxConnectionLifetime = time.Hour
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建 Neo4j 驱动: %w", err)
	}

	if err := verify(ctx, driver, cfg.Database); err != nil {
		// 验证失败时需要关闭已创建的驱动以释放资源。
		driver.Close(ctx)
		return nil, err
	}
	return driver, nil
}

func verify(ctx context.Context, driver neo4j.DriverWithContext, database string) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, verifyQuery, nil)
	if err != nil {
		return fmt.Errorf("验证查询失败: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("验证查询失败: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
