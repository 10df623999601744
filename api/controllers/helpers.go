package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/panel"
	"github.com/moyoez/ticketpanel-go/tool"
)

// panelClient returns the backend client or answers 503 when it is not set up.
func panelClient(c *gin.Context) (*panel.Client, bool) {
	client := models.GetPanelClient()
	if client == nil {
		c.JSON(http.StatusServiceUnavailable, tool.FastReturnError("panel client is not configured"))
		return nil, false
	}
	return client, true
}

// chamadoIDParam parses the :id path parameter.
func chamadoIDParam(c *gin.Context) (int64, bool) {
	return parseChamadoID(c, c.Param("id"))
}

func parseChamadoID(c *gin.Context, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid chamado id: "+raw))
		return 0, false
	}
	return id, true
}

// respondPanelError maps a panel client failure onto an HTTP answer.
func respondPanelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, panel.ErrMissingTicketFields),
		errors.Is(err, panel.ErrMissingReopenFields),
		errors.Is(err, panel.ErrMissingTransferData),
		errors.Is(err, panel.ErrFileNotReadable):
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	case errors.Is(err, context.Canceled):
		tool.DefaultLogger.Debugf("[Panel] Request cancelled by client: %v", err)
		c.Status(499)
		return
	}

	var apiErr *panel.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		c.JSON(status, tool.FastReturnErrorWithData(apiErr.Message, gin.H{"backendStatus": apiErr.StatusCode}))
		return
	}
	tool.DefaultLogger.Errorf("[Panel] %v", err)
	c.JSON(http.StatusBadGateway, tool.FastReturnError(err.Error()))
}
