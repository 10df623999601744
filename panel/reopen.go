package panel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

func reopenKey(email, problem string) string {
	return email + "_" + problem
}

// CheckReopen asks whether a new chamado from email about problem should reopen a
// recently closed one. Answers are cached per (email, problem).
func (c *Client) CheckReopen(ctx context.Context, request types.ReopenCheckRequest) (types.ReopenCheckResult, error) {
	request.Email = strings.TrimSpace(request.Email)
	request.Problem = strings.TrimSpace(request.Problem)
	if request.Email == "" || request.Problem == "" {
		return types.ReopenCheckResult{}, ErrMissingReopenFields
	}
	if request.DaysLimit <= 0 {
		request.DaysLimit = c.reopenDays
	}

	key := reopenKey(request.Email, request.Problem)
	if result, ok := c.reopen.Get(key); ok {
		return result, nil
	}

	url, err := tool.BuildPanelURL(c.baseURL, "ti", "api", "chamados", "verificar-reabertura")
	if err != nil {
		return types.ReopenCheckResult{}, err
	}
	var result types.ReopenCheckResult
	if err := c.doJSON(ctx, http.MethodPost, url, request, &result); err != nil {
		return types.ReopenCheckResult{}, fmt.Errorf("failed to check reopen: %w", err)
	}
	c.reopen.Put(key, result, c.ttls.Reopen)
	return result, nil
}

// Reopen creates a new chamado linked to a closed one.
func (c *Client) Reopen(ctx context.Context, request types.ReopenRequest) (*types.Chamado, error) {
	if request.OriginalID == 0 {
		return nil, fmt.Errorf("original chamado id is required")
	}
	url, err := tool.BuildPanelURL(c.baseURL, "ti", "api", "chamados", "reabrir")
	if err != nil {
		return nil, err
	}
	var result types.ReopenResult
	if err := c.doJSON(ctx, http.MethodPost, url, request, &result); err != nil {
		return nil, fmt.Errorf("failed to reopen chamado %d: %w", request.OriginalID, err)
	}
	// the check answer for this chamado is stale now
	c.reopen.Clear()
	tool.DefaultLogger.Infof("[Panel] Chamado %d reopened", request.OriginalID)

	data := map[string]any{"chamadoOriginalId": request.OriginalID}
	if result.NewChamado != nil {
		data["novoChamado"] = result.NewChamado
	}
	c.notify(&types.Notification{
		Type:    types.NotifyTypeReopened,
		Title:   "Chamado reaberto",
		Message: result.Message,
		Data:    data,
	})
	return result.NewChamado, nil
}

// Reopenings lists the reopen history of a chamado. Not cached.
func (c *Client) Reopenings(ctx context.Context, chamadoID int64) ([]types.Reopening, error) {
	url, err := tool.BuildChamadoURL(c.baseURL, chamadoID, "reaberturas")
	if err != nil {
		return nil, err
	}
	var resp types.ReopeningsResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to load reopenings of chamado %d: %w", chamadoID, err)
	}
	if resp.Reopenings == nil {
		return []types.Reopening{}, nil
	}
	return resp.Reopenings, nil
}

// Chamado fetches one ticket record.
func (c *Client) Chamado(ctx context.Context, chamadoID int64) (*types.Chamado, error) {
	url, err := tool.BuildChamadoURL(c.baseURL, chamadoID)
	if err != nil {
		return nil, err
	}
	var resp types.ChamadoResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to load chamado %d: %w", chamadoID, err)
	}
	return &resp.Chamado, nil
}
