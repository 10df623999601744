package panel

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/moyoez/ticketpanel-go/types"
)

var (
	ErrMissingTicketFields = errors.New("subject and message are required")
	ErrMissingReopenFields = errors.New("email and problem are required")
	ErrMissingTransferData = errors.New("target agent and reason are required")
	ErrFileNotReadable     = errors.New("staged file has no payload")
)

// APIError is a reply the backend rejected, with its HTTP status and message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("panel backend returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func newAPIError(status int, envelope types.StatusEnvelope, fallback string) *APIError {
	msg := envelope.Message
	if msg == "" {
		msg = envelope.Error
	}
	if msg == "" {
		msg = fallback
	}
	return &APIError{StatusCode: status, Message: msg}
}
