package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/api/models"
)

func TestSelfRoutesOnlyAllowLocal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewServer(0).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/self/v1/status", nil)
	req.RemoteAddr = "192.168.0.20:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for a remote caller, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/self/v1/status", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for a local caller, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewServer(0).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/api/self/v1/staging", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestNotifyRouteFollowsHub(t *testing.T) {
	models.SetNotifyHub(nil)
	handler := NewServer(0).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/self/v1/notify-ws", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without a hub, got %d", w.Code)
	}

	models.SetNotifyHub(models.NewHub())
	t.Cleanup(func() { models.SetNotifyHub(nil) })
	handler = NewServer(0).Handler()
	req = httptest.NewRequest(http.MethodGet, "/api/self/v1/notify-ws", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	// a plain GET is not a websocket handshake
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a non-upgrade request, got %d", w.Code)
	}
}
