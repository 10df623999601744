package types

// TicketMessage is the e-mail ticket sent from the panel for one chamado.
type TicketMessage struct {
	Subject  string `json:"assunto"`
	Message  string `json:"mensagem"`
	Priority bool   `json:"prioridade"`
	SendCopy bool   `json:"enviar_copia"`
	Template string `json:"modelo"`
}

// TicketResult is the backend answer to a ticket submission.
type TicketResult struct {
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	Attachments int    `json:"anexos,omitempty"`
}

// Chamado is the subset of a ticket record the panel needs.
type Chamado struct {
	ID           int64     `json:"id"`
	Code         string    `json:"codigo"`
	Protocol     string    `json:"protocolo,omitempty"`
	Status       string    `json:"status,omitempty"`
	Requester    string    `json:"solicitante,omitempty"`
	Email        string    `json:"email,omitempty"`
	Problem      string    `json:"problema,omitempty"`
	Unit         string    `json:"unidade,omitempty"`
	Description  string    `json:"descricao,omitempty"`
	Priority     string    `json:"prioridade,omitempty"`
	OpenedAt     string    `json:"data_abertura,omitempty"`
	ClosedAt     string    `json:"data_conclusao,omitempty"`
	Transfers    int       `json:"numero_transferencias,omitempty"`
	CurrentAgent *AgentRef `json:"agente_atual,omitempty"`
}

// ChamadoResponse wraps GET /ti/api/chamados/{id}.
type ChamadoResponse struct {
	Status  string  `json:"status,omitempty"`
	Message string  `json:"message,omitempty"`
	Chamado Chamado `json:"chamado"`
}

// StatusEnvelope is the common {"status": ..., "message": ...} header of backend replies.
type StatusEnvelope struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
