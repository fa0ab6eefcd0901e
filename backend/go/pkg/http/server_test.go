package http

import (
	"RelationshipManager/backend/go/internal/config"
	"RelationshipManager/backend/go/pkg/logger"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestConfig 返回启用两种中间件的配置：容量 5 的限流器，连续 2 次失败即熔断。
func newTestConfig() *config.AppConfig {
	logger.InitWithOutput(logrus.InfoLevel, io.Discard)
	return &config.AppConfig{
		Middleware: config.MiddlewareConfig{
			RateLimiter: config.RateLimiterConfig{Enabled: true, Rate: 10, Capacity: 5},
			CircuitBreaker: config.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 2,
				MaxRequests:      1,
				Timeout:          "10s",
			},
		},
	}
}

// newTestServer 把一个 gin 路由挂到 "/"，与 relationship_service 的用法一致。
func newTestServer(t *testing.T, cfg *config.AppConfig, router *gin.Engine) *httptest.Server {
	t.Helper()
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	srv.Handle("/", router)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestNewServer_Address(t *testing.T) {
	cfg := newTestConfig()
	cfg.Server.Address = ":7000"

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.Addr() != ":7000" {
		t.Errorf("Addr() = %s, want :7000", srv.Addr())
	}

	srv, err = NewServer(cfg, WithAddress(":9999"))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.Addr() != ":9999" {
		t.Errorf("WithAddress should win over config, got %s", srv.Addr())
	}

	cfg.Server.Address = ""
	srv, err = NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.Addr() != config.DefaultServerAddress {
		t.Errorf("Addr() = %s, want default %s", srv.Addr(), config.DefaultServerAddress)
	}
}

func TestNewServer_InvalidBreakerTimeout(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.CircuitBreaker.Timeout = "soon"

	if _, err := NewServer(cfg); err == nil {
		t.Fatal("expected error for invalid circuit breaker timeout")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.Capacity = 2
	cfg.Middleware.RateLimiter.Rate = 0.001

	r := gin.New()
	r.GET("/pessoas/", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	ts := newTestServer(t, cfg, r)

	for i := 0; i < 2; i++ {
		if code, _ := get(t, ts.URL+"/pessoas/"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, code)
		}
	}
	if code, _ := get(t, ts.URL+"/pessoas/"); code != http.StatusTooManyRequests {
		t.Errorf("request 3: status %d, want 429", code)
	}
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.Enabled = false

	r := gin.New()
	r.GET("/estatisticas/", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Erro interno do servidor"})
	})
	ts := newTestServer(t, cfg, r)

	for i := 0; i < 2; i++ {
		if code, _ := get(t, ts.URL+"/estatisticas/"); code != http.StatusInternalServerError {
			t.Fatalf("request %d: status %d, want 500", i+1, code)
		}
	}

	code, body := get(t, ts.URL+"/estatisticas/")
	if code != http.StatusServiceUnavailable {
		t.Errorf("request 3: status %d, want 503", code)
	}
	if !strings.Contains(body, "Circuit Breaker is open") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.Enabled = false

	r := gin.New()
	r.GET("/pessoas/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Pessoa não encontrada"})
	})
	ts := newTestServer(t, cfg, r)

	for i := 0; i < 5; i++ {
		if code, _ := get(t, ts.URL+"/pessoas/42"); code != http.StatusNotFound {
			t.Fatalf("request %d: status %d, want 404", i+1, code)
		}
	}
}

func TestWebSocketUpgradeThroughMiddlewares(t *testing.T) {
	cfg := newTestConfig()

	upgrader := websocket.Upgrader{}
	r := gin.New()
	r.GET("/ws/eventos", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"tipo":"pessoa_criada"}`))
	})
	ts := newTestServer(t, cfg, r)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/eventos", nil)
	if err != nil {
		t.Fatalf("dial through middlewares: %v", err)
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"tipo":"pessoa_criada"}` {
		t.Errorf("unexpected message %q", msg)
	}
}
