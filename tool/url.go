package tool

import (
	"fmt"
	"net/url"
	"strconv"
)

// BuildPanelURL joins path elements onto the backend base URL.
func BuildPanelURL(baseURL string, elem ...string) (string, error) {
	u, err := url.JoinPath(baseURL, elem...)
	if err != nil {
		return "", fmt.Errorf("failed to build panel URL: %w", err)
	}
	return u, nil
}

// BuildChamadoURL builds /ti/api/chamados/{id}[/suffix...].
func BuildChamadoURL(baseURL string, chamadoID int64, suffix ...string) (string, error) {
	elem := append([]string{"ti", "api", "chamados", strconv.FormatInt(chamadoID, 10)}, suffix...)
	return BuildPanelURL(baseURL, elem...)
}

// BuildTicketURL builds the painel ticket endpoint, with or without attachments.
func BuildTicketURL(baseURL string, chamadoID int64, withAttachments bool) (string, error) {
	last := "ticket"
	if withAttachments {
		last = "ticket-com-anexos"
	}
	return BuildPanelURL(baseURL, "ti", "painel", "api", "chamados", strconv.FormatInt(chamadoID, 10), last)
}
