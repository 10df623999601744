package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// UserStatus returns server status for the web UI.
// GET /api/self/v1/status
func UserStatus(c *gin.Context) {
	hub := models.GetNotifyHub()
	resp := types.StatusResponse{
		Running:         true,
		NotifyWSEnabled: hub != nil,
		PanelBaseURL:    tool.GetCurrentConfig().BaseURL,
	}
	if hub != nil {
		resp.NotifyClients = hub.Clients()
	}
	c.JSON(http.StatusOK, resp)
}

// UserConfigGet returns the loaded config.yaml.
// GET /api/self/v1/config
func UserConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, tool.GetCurrentConfig())
}

// UserClearCaches drops every cached backend lookup, for the UI's refresh button.
// POST /api/self/v1/caches/clear
func UserClearCaches(c *gin.Context) {
	client, ok := panelClient(c)
	if !ok {
		return
	}
	client.ClearCaches()
	tool.DefaultLogger.Infof("[Panel] Caches cleared on request")
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
