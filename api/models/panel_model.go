package models

import (
	"sync"

	"github.com/moyoez/ticketpanel-go/panel"
)

var (
	panelClientMu sync.RWMutex
	panelClient   *panel.Client
)

// SetPanelClient sets the backend client used by the controllers.
func SetPanelClient(c *panel.Client) {
	panelClientMu.Lock()
	defer panelClientMu.Unlock()
	panelClient = c
}

// GetPanelClient returns the backend client, or nil before startup finished.
func GetPanelClient() *panel.Client {
	panelClientMu.RLock()
	defer panelClientMu.RUnlock()
	return panelClient
}
