package panel

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// AvailableAgents lists the agents a chamado can be transferred to. The returned
// slice is a copy of the cached one.
// force skips the cache, e.g. right after a transfer changed someone's load.
func (c *Client) AvailableAgents(ctx context.Context, force bool) ([]types.Agent, error) {
	if !force {
		if agents, ok := c.agents.Get(agentsCacheKey); ok {
			return slices.Clone(agents), nil
		}
	}

	url, err := tool.BuildPanelURL(c.baseURL, "ti", "api", "agentes", "disponiveis")
	if err != nil {
		return nil, err
	}
	var resp types.AgentsResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to load available agents: %w", err)
	}
	agents := resp.Agents
	if agents == nil {
		agents = []types.Agent{}
	}
	c.agents.Put(agentsCacheKey, agents, c.ttls.Agents)
	tool.DefaultLogger.Debugf("[Panel] %d agents loaded", len(agents))
	return slices.Clone(agents), nil
}
