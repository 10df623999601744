// Package notify fans panel events out to the web UI hub and, optionally, to a
// desktop notifier listening on a Unix domain socket.
package notify

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// NotifyWriteChunkSize is the chunk size when writing payload to Unix socket (avoid large single write).
const NotifyWriteChunkSize = 32 * 1024 // 32KB

// MaxNotifyItems caps list-valued data fields so payloads stay under the chunk size.
const MaxNotifyItems = 20

var (
	// UnixSocketTimeout is the timeout for Unix socket operations
	UnixSocketTimeout = 3 * time.Second
)

// Dispatcher implements types.NotifyHub over a web UI hub and an optional socket.
type Dispatcher struct {
	hub        types.NotifyHub
	socketPath string
}

var _ types.NotifyHub = (*Dispatcher)(nil)

// NewDispatcher returns a dispatcher; hub may be nil and an empty socketPath disables the socket.
func NewDispatcher(hub types.NotifyHub, socketPath string) *Dispatcher {
	return &Dispatcher{hub: hub, socketPath: socketPath}
}

// Broadcast delivers notification everywhere configured. Socket failures are logged only.
func (d *Dispatcher) Broadcast(notification *types.Notification) {
	if d == nil || notification == nil {
		return
	}
	truncateLists(notification)
	if d.hub != nil {
		d.hub.Broadcast(notification)
	}
	if d.socketPath != "" {
		if err := SendNotification(notification, d.socketPath); err != nil {
			tool.DefaultLogger.Debugf("[Notify] %v", err)
		}
	}
}

func truncateLists(notification *types.Notification) {
	for key, value := range notification.Data {
		switch v := value.(type) {
		case []any:
			if len(v) > MaxNotifyItems {
				notification.Data[key] = v[:MaxNotifyItems]
			}
		case []string:
			if len(v) > MaxNotifyItems {
				notification.Data[key] = v[:MaxNotifyItems]
			}
		case []types.Transfer:
			if len(v) > MaxNotifyItems {
				notification.Data[key] = v[:MaxNotifyItems]
			}
		}
	}
}

// SendNotification writes one length-prefixed JSON notification to the Unix socket
// and waits for the listener's acknowledgement.
func SendNotification(notification *types.Notification, socketPath string) error {
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return fmt.Errorf("unix socket not found: %s (is the desktop notifier running?)", socketPath)
	}

	payload := []byte("{}")
	if notification != nil {
		var err error
		payload, err = sonic.Marshal(notification)
		if err != nil {
			return fmt.Errorf("failed to serialize notification data: %w", err)
		}
	}
	if len(payload) > NotifyWriteChunkSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), NotifyWriteChunkSize)
	}

	conn, err := net.DialTimeout("unix", socketPath, UnixSocketTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to Unix socket %s: %w", socketPath, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close Unix socket connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(UnixSocketTimeout)); err != nil {
		tool.DefaultLogger.Errorf("Failed to set deadline: %v", err)
	}

	// 4 byte little-endian length, then the payload
	lengthBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthBuf, uint32(len(payload)))
	if _, err := conn.Write(lengthBuf); err != nil {
		return fmt.Errorf("failed to write length to Unix socket: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload to Unix socket: %w", err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read response from Unix socket: %w", err)
	}
	if n > 0 {
		var response map[string]any
		if err := sonic.Unmarshal(buf[:n], &response); err != nil {
			tool.DefaultLogger.Debugf("Unix socket response (raw): %s", string(buf[:n]))
		} else if errMsg, ok := response["error"].(string); ok && errMsg != "" {
			return fmt.Errorf("notifier returned error: %s", errMsg)
		}
	}

	if notification != nil {
		tool.DefaultLogger.Debugf("[UnixSocket] Notification sent: %s - %s", notification.Type, notification.Title)
	}
	return nil
}
