package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Manager keeps the set of connected dashboard subscribers and fans
// broadcasts out to them.
type Manager struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[*websocket.Conn]bool
}

func NewWebSocketManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subscribers: make(map[*websocket.Conn]bool),
	}
}

func (m *Manager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(w, r, nil)
}

func (m *Manager) AddSubscriber(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[conn] = true
}

func (m *Manager) RemoveSubscriber(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, conn)
}

func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

// Broadcast sends v to every subscriber, dropping connections that fail.
func (m *Manager) Broadcast(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.subscribers {
		if err := conn.WriteJSON(v); err != nil {
			m.logger.Error("Failed to write to subscriber, dropping", "error", err)
			conn.Close()
			delete(m.subscribers, conn)
		}
	}
}
