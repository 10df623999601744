package types

// AttachmentLimits is how the web UI sees the constraints of a staging session.
type AttachmentLimits struct {
	MaxFileSizeBytes  int64    `json:"maxFileSizeBytes"`
	MaxTotalSizeBytes int64    `json:"maxTotalSizeBytes"`
	MaxFileSize       string   `json:"maxFileSize"`
	MaxTotalSize      string   `json:"maxTotalSize"`
	AllowedMimeTypes  []string `json:"allowedMimeTypes"`
}

// StagingState is the full picture of one staging session.
type StagingState struct {
	SessionId  string           `json:"sessionId"`
	Files      []StagedFileView `json:"files"`
	Totals     StagingTotals    `json:"totals"`
	TotalHuman string           `json:"totalHuman"`
	Limits     AttachmentLimits `json:"limits"`
}

// CandidateResultView is a CandidateResult with its reason rendered for the UI.
type CandidateResultView struct {
	Index   int              `json:"index"`
	Name    string           `json:"name"`
	Size    int64            `json:"size"`
	Outcome CandidateOutcome `json:"outcome"`
	Reason  string           `json:"reason,omitempty"`
}

// StagingAddResponse answers POST /api/self/v1/staging/:sessionId/files.
type StagingAddResponse struct {
	Results    []CandidateResultView `json:"results"`
	Accepted   int                   `json:"accepted"`
	Duplicates int                   `json:"duplicates"`
	Rejected   int                   `json:"rejected"`
	State      StagingState          `json:"state"`
}

// SubmitTicketResponse answers POST /api/self/v1/staging/:sessionId/submit.
type SubmitTicketResponse struct {
	ChamadoId   int64         `json:"chamadoId"`
	Attachments int           `json:"attachments"`
	Result      *TicketResult `json:"result"`
	State       StagingState  `json:"state"`
}

// StatusResponse answers GET /api/self/v1/status.
type StatusResponse struct {
	Running         bool   `json:"running"`
	NotifyWSEnabled bool   `json:"notify_ws_enabled"`
	NotifyClients   int    `json:"notify_clients"`
	PanelBaseURL    string `json:"panel_base_url"`
}
