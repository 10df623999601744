package tool

import (
	"net"
	"net/http"
	"time"
)

var (
	DefaultTimeout = 30 * time.Second
	// PanelHttpClient is shared by every call to the panel backend.
	PanelHttpClient = NewHTTPClient(DefaultTimeout)
)

// NewHTTPClient creates the client used against the panel backend.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// InitHTTPClients rebuilds the shared client, call after the config is loaded.
func InitHTTPClients(timeout time.Duration) {
	PanelHttpClient = NewHTTPClient(timeout)
}

func GetHttpClient() *http.Client {
	return PanelHttpClient
}
