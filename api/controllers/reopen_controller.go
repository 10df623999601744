package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// UserCheckReopen asks whether a new chamado should reopen a recently closed one.
// POST /api/self/v1/reopen/check
func UserCheckReopen(c *gin.Context) {
	var request types.ReopenCheckRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	result, err := client.CheckReopen(c.Request.Context(), request)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(result))
}

// UserReopen creates a new chamado linked to a closed one.
// POST /api/self/v1/reopen
func UserReopen(c *gin.Context) {
	var request types.ReopenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	if request.OriginalID <= 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("chamado_original_id is required"))
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	chamado, err := client.Reopen(c.Request.Context(), request)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"novo_chamado": chamado,
	}))
}

// UserReopenings lists the reopen history of a chamado.
// GET /api/self/v1/chamados/:id/reopenings
func UserReopenings(c *gin.Context) {
	id, ok := chamadoIDParam(c)
	if !ok {
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	reopenings, err := client.Reopenings(c.Request.Context(), id)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"reaberturas": reopenings,
		"total":       len(reopenings),
	}))
}

// UserGetChamado fetches one chamado, used by the reopen modal for its header.
// GET /api/self/v1/chamados/:id
func UserGetChamado(c *gin.Context) {
	id, ok := chamadoIDParam(c)
	if !ok {
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}
	chamado, err := client.Chamado(c.Request.Context(), id)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(chamado))
}
