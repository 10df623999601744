package models

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// NotifyWriteTimeout bounds one write to one client; a client slower than this is dropped.
var NotifyWriteTimeout = 5 * time.Second

var (
	notifyHubMu sync.RWMutex
	notifyHub   *Hub
	notifier    types.NotifyHub
)

// Hub holds WebSocket connections and broadcasts notifications to all clients.
// Implements types.NotifyHub.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

var _ types.NotifyHub = (*Hub)(nil)

// NewHub creates a new notify hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Register adds a WebSocket connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// drop unregisters and closes conn, which also ends its read loop.
func (h *Hub) drop(conn *websocket.Conn) {
	h.Unregister(conn)
	_ = conn.Close()
}

// Ping sends a keepalive; WriteControl may run concurrently with Broadcast.
func (h *Hub) Ping(conn *websocket.Conn) error {
	err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(NotifyWriteTimeout))
	if err != nil {
		h.drop(conn)
	}
	return err
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the notification as JSON to all registered connections.
func (h *Hub) Broadcast(notification *types.Notification) {
	if h == nil || notification == nil {
		return
	}
	payload, err := sonic.Marshal(notification)
	if err != nil {
		tool.DefaultLogger.Errorf("[Notify] Failed to marshal %s notification: %v", notification.Type, err)
		return
	}
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(NotifyWriteTimeout)); err == nil {
			err = conn.WriteMessage(websocket.TextMessage, payload)
		}
		if err != nil {
			tool.DefaultLogger.Debugf("[Notify] Dropping client after write error: %v", err)
			h.drop(conn)
		}
	}
	tool.DefaultLogger.Debugf("[Notify] %s sent to %d clients", notification.Type, len(conns))
}

// SetNotifyHub sets the hub used for WebSocket notification broadcast.
func SetNotifyHub(h *Hub) {
	notifyHubMu.Lock()
	defer notifyHubMu.Unlock()
	notifyHub = h
}

// GetNotifyHub returns the notify WebSocket hub, or nil if not set.
func GetNotifyHub() *Hub {
	notifyHubMu.RLock()
	defer notifyHubMu.RUnlock()
	return notifyHub
}

// SetNotifier routes Notify through n instead of the bare hub, e.g. a dispatcher
// that also reaches a desktop notifier.
func SetNotifier(n types.NotifyHub) {
	notifyHubMu.Lock()
	defer notifyHubMu.Unlock()
	notifier = n
}

// Notify broadcasts through the notifier, or the hub when no notifier is set.
func Notify(notification *types.Notification) {
	notifyHubMu.RLock()
	n, h := notifier, notifyHub
	notifyHubMu.RUnlock()
	switch {
	case n != nil:
		n.Broadcast(notification)
	case h != nil:
		h.Broadcast(notification)
	}
}
