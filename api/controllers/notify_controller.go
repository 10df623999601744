package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/tool"
)

const (
	notifyPongWait   = 60 * time.Second
	notifyPingPeriod = notifyPongWait * 9 / 10
	// the UI only ever sends control frames
	notifyMaxMessage = 512
)

var notifyWSUpgrader = websocket.Upgrader{
	// /api/self/v1 is loopback only, and the panel page is served from the backend's origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleNotifyWS is the push channel of the panel UI: ticket, transfer, reopen and
// cache events arrive here. The connection is kept alive with pings and dropped by
// the hub when a write stalls.
// GET /api/self/v1/notify-ws
func HandleNotifyWS(hub *models.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := notifyWSUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			tool.DefaultLogger.Debugf("[Notify] WebSocket upgrade failed: %v", err)
			return
		}
		conn.SetReadLimit(notifyMaxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(notifyPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(notifyPongWait))
		})

		hub.Register(conn)
		tool.DefaultLogger.Debugf("[Notify] UI client connected from %s (%d connected)", c.ClientIP(), hub.Clients())
		done := make(chan struct{})
		defer func() {
			close(done)
			hub.Unregister(conn)
			_ = conn.Close()
			tool.DefaultLogger.Debugf("[Notify] UI client from %s disconnected", c.ClientIP())
		}()

		go func() {
			ticker := time.NewTicker(notifyPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if hub.Ping(conn) != nil {
						return
					}
				}
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
