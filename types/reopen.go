package types

// ReopenCheckRequest asks whether a new chamado should reopen a recently closed one.
type ReopenCheckRequest struct {
	Email     string `json:"email"`
	Problem   string `json:"problema"`
	DaysLimit int    `json:"dias_limite,omitempty"`
}

// ReopenCandidate is the closed chamado that matches a reopen check.
type ReopenCandidate struct {
	ID          int64  `json:"id"`
	Code        string `json:"codigo"`
	Protocol    string `json:"protocolo"`
	ClosedAt    string `json:"data_conclusao,omitempty"`
	Problem     string `json:"problema"`
	Description string `json:"descricao,omitempty"`
}

// ReopenCheckResult is the answer of POST /ti/api/chamados/verificar-reabertura.
type ReopenCheckResult struct {
	StatusEnvelope
	CanReopen       bool             `json:"pode_reabrir"`
	Original        *ReopenCandidate `json:"chamado_original,omitempty"`
	Reason          string           `json:"motivo,omitempty"`
	DaysSinceClosed *int             `json:"dias_desde_conclusao,omitempty"`
}

// ReopenRequest is the body of POST /ti/api/chamados/reabrir.
type ReopenRequest struct {
	OriginalID int64  `json:"chamado_original_id"`
	Reason     string `json:"motivo"`
	Notes      string `json:"observacoes_adicionais,omitempty"`
}

// ReopenResult carries the chamado created by a reopen.
type ReopenResult struct {
	StatusEnvelope
	NewChamado *Chamado `json:"novo_chamado,omitempty"`
}

// Reopening is one entry of GET /ti/api/chamados/{id}/reaberturas.
type Reopening struct {
	ID           int64     `json:"id"`
	Reopened     *Chamado  `json:"chamado_reaberto,omitempty"`
	User         *AgentRef `json:"usuario,omitempty"`
	ReopenedAt   string    `json:"data_reabertura,omitempty"`
	DaysBetween  *int      `json:"dias_entre_chamados,omitempty"`
	Reason       string    `json:"motivo,omitempty"`
	Notes        string    `json:"observacoes,omitempty"`
	ReopenStatus string    `json:"status,omitempty"`
}

// ReopeningsResponse wraps the reopen history of a chamado.
type ReopeningsResponse struct {
	StatusEnvelope
	Reopenings []Reopening `json:"reaberturas"`
	Total      int         `json:"total"`
}
