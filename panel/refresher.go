package panel

import (
	"context"
	"time"

	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// RefreshInterval is the configured period of RunRefresher.
func (c *Client) RefreshInterval() time.Duration {
	return c.ttls.RefreshInterval
}

// RunRefresher clears the transfer histories every interval and purges stale
// agents and reopen answers, until ctx is done.
func (c *Client) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttls.RefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tool.DefaultLogger.Debugf("[Panel] Cache refresher stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			c.refresh()
		}
	}
}

func (c *Client) refresh() {
	c.transfers.Clear()
	purged := c.agents.Purge() + c.reopen.Purge()
	tool.DefaultLogger.Debugf("[Panel] Transfer cache cleared, %d stale entries purged", purged)
	c.notify(&types.Notification{
		Type:  types.NotifyTypeCachesRefreshed,
		Title: "Caches refreshed",
	})
}
