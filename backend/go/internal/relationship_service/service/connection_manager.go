package service

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 单条消息写入对端的最长时间
	writeWait = 5 * time.Second

	// 每个订阅者待发送消息的缓冲大小，写满即断开
	sendBufferSize = 64
)

// Conn 是 *websocket.Conn 中用到的部分。
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// connection 由独立的 writePump 串行写出，gorilla/websocket 不支持并发写。
type connection struct {
	conn      Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// ConnectionManager manages WebSocket connections subscribed to network events.
// Broadcast never waits on a subscriber: slow ones are dropped.
type ConnectionManager struct {
	connections map[string]*connection
	mu          sync.RWMutex
}

// NewConnectionManager creates a new ConnectionManager.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*connection),
	}
}

// Add registers a new connection and starts its write loop.
func (m *ConnectionManager) Add(id string, conn Conn) {
	c := &connection{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	m.mu.Lock()
	old := m.connections[id]
	m.connections[id] = c
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	go m.writePump(id, c)
}

// Remove closes and removes a connection.
func (m *ConnectionManager) Remove(id string) {
	m.mu.Lock()
	c, ok := m.connections[id]
	delete(m.connections, id)
	m.mu.Unlock()
	if ok {
		c.close()
	}
}

// drop 只移除仍然是 c 的那个连接。
func (m *ConnectionManager) drop(id string, c *connection) {
	m.mu.Lock()
	if m.connections[id] == c {
		delete(m.connections, id)
	}
	m.mu.Unlock()
	c.close()
}

// Count returns the number of open connections.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast queues a message for every connection and drops the ones whose
// buffer is full. It returns how many connections accepted the message.
func (m *ConnectionManager) Broadcast(message []byte) int {
	m.mu.RLock()
	targets := make(map[string]*connection, len(m.connections))
	for id, c := range m.connections {
		targets[id] = c
	}
	m.mu.RUnlock()

	sent := 0
	for id, c := range targets {
		select {
		case <-c.done:
			continue
		default:
		}
		select {
		case c.send <- message:
			sent++
		default:
			m.drop(id, c)
		}
	}
	return sent
}

func (m *ConnectionManager) writePump(id string, c *connection) {
	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				m.drop(id, c)
				return
			}
		}
	}
}
