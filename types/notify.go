package types

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"`    // Notification type, e.g. "ticket_sent", "chamado_transferido"
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

const (
	NotifyTypeStagingUpdated  = "staging_updated"
	NotifyTypeTicketSent      = "ticket_sent"
	NotifyTypeTransferred     = "chamado_transferido"
	NotifyTypeReopened        = "chamado_reaberto"
	NotifyTypeCachesRefreshed = "caches_refreshed"
)

// NotifyHub broadcasts notifications to connected web UI clients.
type NotifyHub interface {
	Broadcast(notification *Notification)
}
