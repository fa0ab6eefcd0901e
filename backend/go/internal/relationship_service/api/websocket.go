package api

import (
	"RelationshipManager/backend/go/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// newUpgrader 创建按 CORS 配置检查来源的 WebSocket upgrader。
func newUpgrader(allowOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

// EventosWebSocketHandler 把连接升级为 WebSocket 并订阅领域事件。
// 客户端发送的消息会被忽略，读循环只用来检测连接关闭。
func (h *Handler) EventosWebSocketHandler(upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			requestLogger(c, h.logger).WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to upgrade WebSocket connection")
			return
		}

		connID := uuid.New().String()
		h.service.AddConnection(connID, conn)

		go func() {
			defer h.service.RemoveConnection(connID)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()
	}
}
