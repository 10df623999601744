package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/tool"
)

// OnlyAllowLocal rejects every caller that is not on the loopback interface.
func OnlyAllowLocal(c *gin.Context) {
	switch c.ClientIP() {
	case "127.0.0.1", "::1":
		c.Next()
	default:
		tool.DefaultLogger.Warnf("[Server] Rejected %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
	}
}
