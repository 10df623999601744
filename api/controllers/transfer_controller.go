package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// UserAvailableAgents lists the agents a chamado can be moved to.
// GET /api/self/v1/agents?force=true
func UserAvailableAgents(c *gin.Context) {
	force := false
	if raw := c.Query("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid force value: "+raw))
			return
		}
		force = parsed
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	agents, err := client.AvailableAgents(c.Request.Context(), force)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"agentes": agents,
		"total":   len(agents),
	}))
}

// UserTransferHistory returns the transfer history of a chamado.
// GET /api/self/v1/chamados/:id/transfers
func UserTransferHistory(c *gin.Context) {
	id, ok := chamadoIDParam(c)
	if !ok {
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	transfers, err := client.TransferHistory(c.Request.Context(), id)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"transferencias": transfers,
		"total":          len(transfers),
	}))
}

// UserTransferChamado moves a chamado to another agent.
// POST /api/self/v1/chamados/:id/transfer
func UserTransferChamado(c *gin.Context) {
	id, ok := chamadoIDParam(c)
	if !ok {
		return
	}
	var request types.TransferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	receipt, err := client.Transfer(c.Request.Context(), id, request)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"chamadoId":     id,
		"transferencia": receipt,
	}))
}
