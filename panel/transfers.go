package panel

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

func transfersKey(chamadoID int64) string {
	return fmt.Sprintf("transfers:%d", chamadoID)
}

// TransferHistory returns a copy of the transfer history of a chamado, cached for the transfers TTL.
func (c *Client) TransferHistory(ctx context.Context, chamadoID int64) ([]types.Transfer, error) {
	key := transfersKey(chamadoID)
	if transfers, ok := c.transfers.Get(key); ok {
		return slices.Clone(transfers), nil
	}

	url, err := tool.BuildChamadoURL(c.baseURL, chamadoID, "transferencias")
	if err != nil {
		return nil, err
	}
	var resp types.TransferHistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to load transfers of chamado %d: %w", chamadoID, err)
	}
	transfers := resp.Transfers
	if transfers == nil {
		transfers = []types.Transfer{}
	}
	c.transfers.Put(key, transfers, c.ttls.Transfers)
	return slices.Clone(transfers), nil
}

// Transfer moves a chamado to another agent. On success the chamado's history
// and the agent list are invalidated.
func (c *Client) Transfer(ctx context.Context, chamadoID int64, request types.TransferRequest) (*types.TransferReceipt, error) {
	request.Reason = strings.TrimSpace(request.Reason)
	request.Notes = strings.TrimSpace(request.Notes)
	if request.TargetAgentID == 0 || request.Reason == "" {
		return nil, ErrMissingTransferData
	}

	url, err := tool.BuildChamadoURL(c.baseURL, chamadoID, "transferir")
	if err != nil {
		return nil, err
	}
	var resp types.TransferResponse
	if err := c.doJSON(ctx, http.MethodPost, url, request, &resp); err != nil {
		return nil, fmt.Errorf("failed to transfer chamado %d: %w", chamadoID, err)
	}

	c.InvalidateTransfers(chamadoID)
	c.agents.Invalidate(agentsCacheKey)
	tool.DefaultLogger.Infof("[Panel] Chamado %d transferred to agent %d", chamadoID, request.TargetAgentID)

	data := map[string]any{
		"chamadoId": chamadoID,
		"agenteId":  request.TargetAgentID,
	}
	if resp.Transfer != nil {
		data["transferencia"] = resp.Transfer
	}
	c.notify(&types.Notification{
		Type:    types.NotifyTypeTransferred,
		Title:   "Chamado transferido",
		Message: resp.Message,
		Data:    data,
	})
	return resp.Transfer, nil
}

// InvalidateTransfers forgets the cached history of one chamado, e.g. when a
// transfer made elsewhere is announced.
func (c *Client) InvalidateTransfers(chamadoID int64) {
	c.transfers.Invalidate(transfersKey(chamadoID))
}
