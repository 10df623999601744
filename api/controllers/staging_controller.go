package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/staging"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

const (
	stagingFilesField = "files"
	// stagingUploadSlack is allowed on top of the total limit for multipart framing.
	stagingUploadSlack = 1 << 20
)

// UserCreateStaging opens a staging session for the ticket modal.
// POST /api/self/v1/staging
func UserCreateStaging(c *gin.Context) {
	sessionId, st := models.CreateStagingSession()
	tool.DefaultLogger.Infof("[Staging] Session %s created", sessionId)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(stagingState(sessionId, st)))
}

// UserStagingAddFiles validates uploaded files and stages the ones that pass.
// POST /api/self/v1/staging/:sessionId/files (multipart, field "files")
func UserStagingAddFiles(c *gin.Context) {
	sessionId, st, ok := lookupStaging(c)
	if !ok {
		return
	}

	limit := st.Constraints().MaxTotalSizeBytes + stagingUploadSlack
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, tool.FastReturnError(
				fmt.Sprintf("upload exceeds %s", tool.FormatSize(limit))))
			return
		}
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid multipart form: "+err.Error()))
		return
	}
	headers := form.File[stagingFilesField]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("files is required and must not be empty"))
		return
	}

	candidates := make([]types.FileDescriptor, 0, len(headers))
	for _, fh := range headers {
		desc, err := readUploadedFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
			return
		}
		candidates = append(candidates, desc)
	}

	report := st.AddCandidates(candidates)
	models.TouchStagingSession(sessionId, st)

	resp := types.StagingAddResponse{
		Results: make([]types.CandidateResultView, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		view := types.CandidateResultView{
			Index:   res.Index,
			Name:    res.Name,
			Size:    res.Size,
			Outcome: res.Outcome,
		}
		switch res.Outcome {
		case types.OutcomeAccepted:
			resp.Accepted++
		case types.OutcomeDuplicate:
			resp.Duplicates++
		case types.OutcomeRejected:
			resp.Rejected++
			view.Reason = rejectionMessage(res, st.Constraints())
			tool.DefaultLogger.Debugf("[Staging] %s rejected: %v", res.Name, res.Reason)
		}
		resp.Results = append(resp.Results, view)
	}
	resp.State = stagingState(sessionId, st)
	tool.DefaultLogger.Infof("[Staging] Session %s: %d accepted, %d duplicate, %d rejected",
		sessionId, resp.Accepted, resp.Duplicates, resp.Rejected)

	if resp.Accepted > 0 {
		models.Notify(&types.Notification{
			Type:    types.NotifyTypeStagingUpdated,
			Title:   "Anexos atualizados",
			Message: fmt.Sprintf("%d arquivo(s) anexado(s)", resp.Accepted),
			Data: map[string]any{
				"sessionId": sessionId,
				"totals":    resp.State.Totals,
			},
		})
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(resp))
}

// UserStagingRemoveFile drops one staged file by position.
// DELETE /api/self/v1/staging/:sessionId/files/:index
func UserStagingRemoveFile(c *gin.Context) {
	sessionId, st, ok := lookupStaging(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid index: "+c.Param("index")))
		return
	}
	st.Remove(index)
	models.TouchStagingSession(sessionId, st)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(stagingState(sessionId, st)))
}

// UserStagingGet lists the staged files with their totals.
// GET /api/self/v1/staging/:sessionId
func UserStagingGet(c *gin.Context) {
	sessionId, st, ok := lookupStaging(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(stagingState(sessionId, st)))
}

// UserStagingDismiss clears and drops a session, like closing the modal.
// DELETE /api/self/v1/staging/:sessionId
func UserStagingDismiss(c *gin.Context) {
	sessionId := c.Param("sessionId")
	if models.GetStagingSession(sessionId) == nil {
		c.JSON(http.StatusNotFound, tool.FastReturnError("staging session not found"))
		return
	}
	models.RemoveStagingSession(sessionId)
	tool.DefaultLogger.Infof("[Staging] Session %s dismissed", sessionId)
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// UserStagingSubmit sends the ticket e-mail with the staged files and removes them from the session.
// POST /api/self/v1/staging/:sessionId/submit?chamadoId=
func UserStagingSubmit(c *gin.Context) {
	sessionId, st, ok := lookupStaging(c)
	if !ok {
		return
	}
	chamadoID, ok := parseChamadoID(c, c.Query("chamadoId"))
	if !ok {
		return
	}
	var msg types.TicketMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	client, ok := panelClient(c)
	if !ok {
		return
	}

	files := st.Files()
	result, err := client.SendTicket(c.Request.Context(), chamadoID, msg, files)
	if err != nil {
		respondPanelError(c, err)
		return
	}
	// files staged while the ticket was in flight stay for the next submit
	st.RemoveStaged(files)
	models.TouchStagingSession(sessionId, st)

	message := "Ticket enviado"
	if result != nil && result.Message != "" {
		message = result.Message
	}
	models.Notify(&types.Notification{
		Type:    types.NotifyTypeTicketSent,
		Title:   "Ticket enviado",
		Message: message,
		Data: map[string]any{
			"chamadoId": chamadoID,
			"anexos":    len(files),
		},
	})
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(types.SubmitTicketResponse{
		ChamadoId:   chamadoID,
		Attachments: len(files),
		Result:      result,
		State:       stagingState(sessionId, st),
	}))
}

func lookupStaging(c *gin.Context) (string, *staging.Staging, bool) {
	sessionId := c.Param("sessionId")
	st := models.GetStagingSession(sessionId)
	if st == nil {
		c.JSON(http.StatusNotFound, tool.FastReturnError("staging session not found"))
		return "", nil, false
	}
	return sessionId, st, true
}

// readUploadedFile buffers one part; multipart temp files do not outlive the request.
func readUploadedFile(fh *multipart.FileHeader) (types.FileDescriptor, error) {
	f, err := fh.Open()
	if err != nil {
		return types.FileDescriptor{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close uploaded file: %v", err)
		}
	}()
	data, err := io.ReadAll(f)
	if err != nil {
		return types.FileDescriptor{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return tool.DescriptorFromBytes(fh.Filename, fh.Header.Get("Content-Type"), data), nil
}

func stagingState(sessionId string, st *staging.Staging) types.StagingState {
	files, totals := st.Snapshot()
	constraints := st.Constraints()
	allowed := constraints.AllowedMimeTypes
	if allowed == nil {
		allowed = []string{}
	}
	return types.StagingState{
		SessionId:  sessionId,
		Files:      tool.StagedFileViews(files),
		Totals:     totals,
		TotalHuman: tool.FormatSize(totals.TotalSizeBytes),
		Limits: types.AttachmentLimits{
			MaxFileSizeBytes:  constraints.MaxFileSizeBytes,
			MaxTotalSizeBytes: constraints.MaxTotalSizeBytes,
			MaxFileSize:       tool.FormatSize(constraints.MaxFileSizeBytes),
			MaxTotalSize:      tool.FormatSize(constraints.MaxTotalSizeBytes),
			AllowedMimeTypes:  allowed,
		},
	}
}

// rejectionMessage words a rejection the way the attachment alerts do.
func rejectionMessage(res types.CandidateResult, constraints types.AttachmentConstraints) string {
	switch {
	case errors.Is(res.Reason, staging.ErrInvalidType):
		return fmt.Sprintf("Tipo de arquivo não permitido: %s", res.Name)
	case errors.Is(res.Reason, staging.ErrFileTooLarge):
		return fmt.Sprintf("Arquivo muito grande: %s (máximo %s)", res.Name, tool.FormatSize(constraints.MaxFileSizeBytes))
	case errors.Is(res.Reason, staging.ErrTotalSizeExceeded):
		return fmt.Sprintf("Tamanho total excede o limite de %s", tool.FormatSize(constraints.MaxTotalSizeBytes))
	case res.Reason != nil:
		return res.Reason.Error()
	default:
		return ""
	}
}
