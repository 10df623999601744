package types

// AgentRef is a short agent reference as embedded in transfer records.
type AgentRef struct {
	ID    *int64 `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email,omitempty"`
}

// AgentUser is the user account behind a support agent.
type AgentUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// Agent is one entry of the available-agents list.
type Agent struct {
	ID                  int64     `json:"id"`
	User                AgentUser `json:"usuario"`
	ExperienceLevel     string    `json:"nivel_experiencia"`
	Specialties         []string  `json:"especialidades"`
	ActiveTickets       int       `json:"chamados_ativos"`
	MaxConcurrent       int       `json:"max_chamados_simultaneos"`
	CanReceive          bool      `json:"pode_receber_chamado"`
	AvailabilityPercent float64   `json:"disponibilidade_percentual"`
}

// AgentsResponse wraps GET /ti/api/agentes/disponiveis.
type AgentsResponse struct {
	StatusEnvelope
	Agents []Agent `json:"agentes"`
	Total  int     `json:"total"`
}

// Transfer is one row of a chamado's transfer history.
type Transfer struct {
	ID               int64     `json:"id"`
	TransferredAt    string    `json:"data_transferencia"`
	PreviousAgent    *AgentRef `json:"agente_anterior,omitempty"`
	NewAgent         *AgentRef `json:"agente_novo,omitempty"`
	TransferredBy    *AgentRef `json:"usuario_transferencia,omitempty"`
	Reason           string    `json:"motivo_transferencia"`
	Notes            string    `json:"observacoes,omitempty"`
	Kind             string    `json:"tipo_transferencia,omitempty"`
	PreviousStatus   string    `json:"status_anterior,omitempty"`
	NewStatus        string    `json:"status_novo,omitempty"`
	PreviousPriority string    `json:"prioridade_anterior,omitempty"`
	NewPriority      string    `json:"prioridade_nova,omitempty"`
	TimeBetween      string    `json:"tempo_entre_transferencias,omitempty"`
}

// TransferHistoryResponse wraps GET /ti/api/chamados/{id}/transferencias.
type TransferHistoryResponse struct {
	StatusEnvelope
	Transfers []Transfer `json:"transferencias"`
	Total     int        `json:"total"`
	Chamado   *Chamado   `json:"chamado,omitempty"`
}

// TransferRequest is the body of POST /ti/api/chamados/{id}/transferir.
type TransferRequest struct {
	TargetAgentID int64  `json:"agente_destino_id"`
	Reason        string `json:"motivo"`
	Notes         string `json:"observacoes,omitempty"`
}

// TransferReceipt describes the transfer the backend just recorded.
type TransferReceipt struct {
	ID            int64    `json:"id"`
	TargetAgent   AgentRef `json:"agente_destino"`
	TransferredAt string   `json:"data_transferencia"`
	Reason        string   `json:"motivo"`
}

// TransferResponse wraps the answer of a transfer.
type TransferResponse struct {
	StatusEnvelope
	Transfer *TransferReceipt `json:"transferencia,omitempty"`
}
