package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/panel"
	"github.com/moyoez/ticketpanel-go/types"
)

// setupRouter creates a test router with the self endpoints
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	self := router.Group("/api/self/v1")
	{
		self.POST("/staging", UserCreateStaging)
		self.GET("/staging/:sessionId", UserStagingGet)
		self.DELETE("/staging/:sessionId", UserStagingDismiss)
		self.POST("/staging/:sessionId/files", UserStagingAddFiles)
		self.DELETE("/staging/:sessionId/files/:index", UserStagingRemoveFile)
		self.POST("/staging/:sessionId/submit", UserStagingSubmit)
		self.GET("/agents", UserAvailableAgents)
		self.GET("/chamados/:id", UserGetChamado)
		self.GET("/chamados/:id/transfers", UserTransferHistory)
		self.POST("/chamados/:id/transfer", UserTransferChamado)
		self.POST("/reopen/check", UserCheckReopen)
		self.GET("/status", UserStatus)
	}
	return router
}

// setupPanel points the controllers at a fake backend for the duration of the test.
func setupPanel(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)
	models.SetPanelClient(panel.NewClient(panel.Options{
		BaseURL:    backend.URL,
		HTTPClient: backend.Client(),
	}))
	t.Cleanup(func() { models.SetPanelClient(nil) })
}

type uploadPart struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, parts ...uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, p.name))
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(p.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func perform(router *gin.Engine, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.RemoteAddr = "127.0.0.1:12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data  T      `json:"data"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return resp.Data
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := perform(router, http.MethodPost, "/api/self/v1/staging", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	state := decodeData[types.StagingState](t, w)
	if state.SessionId == "" {
		t.Fatal("Expected a session id")
	}
	t.Cleanup(func() { models.RemoveStagingSession(state.SessionId) })
	return state.SessionId
}

func TestStagingLifecycle(t *testing.T) {
	router := setupRouter()
	sessionId := createSession(t, router)
	base := "/api/self/v1/staging/" + sessionId

	body, ct := multipartBody(t,
		uploadPart{name: "relatorio.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 report")},
		uploadPart{name: "setup.exe", contentType: "application/x-msdownload", data: []byte("MZ")},
	)
	w := perform(router, http.MethodPost, base+"/files", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	added := decodeData[types.StagingAddResponse](t, w)
	if added.Accepted != 1 || added.Rejected != 1 || added.Duplicates != 0 {
		t.Fatalf("Unexpected counts: %+v", added)
	}
	if added.Results[1].Outcome != types.OutcomeRejected || !strings.Contains(added.Results[1].Reason, "setup.exe") {
		t.Errorf("Expected setup.exe to be rejected with a reason, got %+v", added.Results[1])
	}
	if added.State.Totals.Count != 1 || added.State.Files[0].Kind != "pdf" {
		t.Errorf("Unexpected state: %+v", added.State)
	}

	// picking the same file again is a silent duplicate
	body, ct = multipartBody(t, uploadPart{name: "relatorio.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 report")})
	w = perform(router, http.MethodPost, base+"/files", body, ct)
	added = decodeData[types.StagingAddResponse](t, w)
	if added.Duplicates != 1 || added.State.Totals.Count != 1 {
		t.Errorf("Expected one duplicate and one staged file, got %+v", added)
	}

	w = perform(router, http.MethodGet, base, nil, "")
	state := decodeData[types.StagingState](t, w)
	if state.Totals.TotalSizeBytes != int64(len("%PDF-1.4 report")) {
		t.Errorf("Unexpected total %d", state.Totals.TotalSizeBytes)
	}

	w = perform(router, http.MethodDelete, base+"/files/5", nil, "")
	if w.Code != http.StatusOK || decodeData[types.StagingState](t, w).Totals.Count != 1 {
		t.Errorf("Out of range removal must be a no-op, got %d: %s", w.Code, w.Body.String())
	}
	w = perform(router, http.MethodDelete, base+"/files/0", nil, "")
	if decodeData[types.StagingState](t, w).Totals.Count != 0 {
		t.Errorf("Expected empty staging after removal: %s", w.Body.String())
	}
	w = perform(router, http.MethodDelete, base+"/files/abc", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a bad index, got %d", w.Code)
	}

	w = perform(router, http.MethodDelete, base, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	w = perform(router, http.MethodGet, base, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after dismiss, got %d", w.Code)
	}
}

func TestStagingSizeLimits(t *testing.T) {
	previous := models.GetAttachmentConstraints()
	models.SetAttachmentConstraints(types.AttachmentConstraints{MaxFileSizeBytes: 10, MaxTotalSizeBytes: 15})
	t.Cleanup(func() { models.SetAttachmentConstraints(previous) })

	router := setupRouter()
	sessionId := createSession(t, router)
	target := "/api/self/v1/staging/" + sessionId + "/files"

	body, ct := multipartBody(t,
		uploadPart{name: "a.txt", contentType: "text/plain", data: bytes.Repeat([]byte("a"), 8)},
		uploadPart{name: "b.txt", contentType: "text/plain", data: bytes.Repeat([]byte("b"), 11)},
		uploadPart{name: "c.txt", contentType: "text/plain", data: bytes.Repeat([]byte("c"), 8)},
	)
	w := perform(router, http.MethodPost, target, body, ct)
	added := decodeData[types.StagingAddResponse](t, w)
	if added.Accepted != 1 || added.Rejected != 2 {
		t.Fatalf("Unexpected counts: %+v", added)
	}
	if !strings.Contains(added.Results[1].Reason, "Arquivo muito grande") {
		t.Errorf("Expected per-file limit message, got %q", added.Results[1].Reason)
	}
	if !strings.Contains(added.Results[2].Reason, "Tamanho total") {
		t.Errorf("Expected total limit message, got %q", added.Results[2].Reason)
	}

	// the request itself is capped at the total limit plus framing slack
	body, ct = multipartBody(t, uploadPart{name: "big.txt", contentType: "text/plain", data: make([]byte, stagingUploadSlack+1024)})
	w = perform(router, http.MethodPost, target, body, ct)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStagingUnknownSession(t *testing.T) {
	router := setupRouter()
	body, ct := multipartBody(t, uploadPart{name: "a.txt", contentType: "text/plain", data: []byte("a")})
	w := perform(router, http.MethodPost, "/api/self/v1/staging/missing/files", body, ct)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	w = perform(router, http.MethodDelete, "/api/self/v1/staging/missing", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestStagingSubmit(t *testing.T) {
	var gotFiles []string
	var gotSubject string
	mux := http.NewServeMux()
	mux.HandleFunc("/ti/painel/api/chamados/7/ticket-com-anexos", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotSubject = r.FormValue("assunto")
		for _, fh := range r.MultipartForm.File["anexos"] {
			gotFiles = append(gotFiles, fh.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"Ticket enviado com 2 anexos"}`))
	})
	setupPanel(t, mux)

	router := setupRouter()
	sessionId := createSession(t, router)
	base := "/api/self/v1/staging/" + sessionId

	body, ct := multipartBody(t,
		uploadPart{name: "foto.png", contentType: "image/png", data: []byte("\x89PNG\r\n\x1a\nxx")},
		uploadPart{name: "notas.txt", contentType: "text/plain", data: []byte("notes")},
	)
	if w := perform(router, http.MethodPost, base+"/files", body, ct); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	msg := `{"assunto":"Chamado TI-7","mensagem":"Segue em anexo","prioridade":false,"enviar_copia":true,"modelo":"confirmacao"}`
	w := perform(router, http.MethodPost, base+"/submit", strings.NewReader(msg), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without chamadoId, got %d", w.Code)
	}

	w = perform(router, http.MethodPost, base+"/submit?chamadoId=7", strings.NewReader(msg), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeData[types.SubmitTicketResponse](t, w)
	if resp.Attachments != 2 || resp.State.Totals.Count != 0 {
		t.Errorf("Expected 2 attachments sent and an empty staging, got %+v", resp)
	}
	if gotSubject != "Chamado TI-7" {
		t.Errorf("Backend received subject %q", gotSubject)
	}
	if len(gotFiles) != 2 || gotFiles[0] != "foto.png" || gotFiles[1] != "notas.txt" {
		t.Errorf("Backend received files %v", gotFiles)
	}
}

func TestSubmitWithoutPanelClient(t *testing.T) {
	models.SetPanelClient(nil)
	router := setupRouter()
	sessionId := createSession(t, router)
	w := perform(router, http.MethodPost, "/api/self/v1/staging/"+sessionId+"/submit?chamadoId=1",
		strings.NewReader(`{"assunto":"a","mensagem":"b"}`), "application/json")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestSubmitMissingFields(t *testing.T) {
	setupPanel(t, http.NewServeMux())
	router := setupRouter()
	sessionId := createSession(t, router)
	w := perform(router, http.MethodPost, "/api/self/v1/staging/"+sessionId+"/submit?chamadoId=1",
		strings.NewReader(`{"assunto":"  ","mensagem":"b"}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTransferEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ti/api/agentes/disponiveis", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","agentes":[{"id":3,"usuario":{"id":9,"nome":"Ana"}}],"total":1}`))
	})
	mux.HandleFunc("/ti/api/chamados/12/transferencias", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","transferencias":[{"id":1,"motivo_transferencia":"x"}]}`))
	})
	mux.HandleFunc("/ti/api/chamados/12/transferir", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":"error","message":"Sem permissão"}`))
	})
	setupPanel(t, mux)
	router := setupRouter()

	w := perform(router, http.MethodGet, "/api/self/v1/agents?force=true", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	agents := decodeData[struct {
		Agents []types.Agent `json:"agentes"`
		Total  int           `json:"total"`
	}](t, w)
	if agents.Total != 1 || agents.Agents[0].User.Name != "Ana" {
		t.Errorf("Unexpected agents %+v", agents)
	}
	if w := perform(router, http.MethodGet, "/api/self/v1/agents?force=maybe", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a bad force flag, got %d", w.Code)
	}

	w = perform(router, http.MethodGet, "/api/self/v1/chamados/12/transfers", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := perform(router, http.MethodGet, "/api/self/v1/chamados/abc/transfers", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a bad id, got %d", w.Code)
	}

	w = perform(router, http.MethodPost, "/api/self/v1/chamados/12/transfer",
		strings.NewReader(`{"agente_destino_id":3}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a reason, got %d", w.Code)
	}
	w = perform(router, http.MethodPost, "/api/self/v1/chamados/12/transfer",
		strings.NewReader(`{"agente_destino_id":3,"motivo":"escalation"}`), "application/json")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected backend status 403 to pass through, got %d", w.Code)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &errResp)
	if errResp.Error != "Sem permissão" {
		t.Errorf("Expected backend message, got %q", errResp.Error)
	}
}

func TestCheckReopenEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ti/api/chamados/verificar-reabertura", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","pode_reabrir":true,"chamado_original":{"id":77,"codigo":"TI-77"}}`))
	})
	mux.HandleFunc("/ti/api/chamados/404", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	setupPanel(t, mux)
	router := setupRouter()

	w := perform(router, http.MethodPost, "/api/self/v1/reopen/check",
		strings.NewReader(`{"email":"u@example.com","problema":"Rede"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	result := decodeData[types.ReopenCheckResult](t, w)
	if !result.CanReopen || result.Original.Code != "TI-77" {
		t.Errorf("Unexpected result %+v", result)
	}

	w = perform(router, http.MethodPost, "/api/self/v1/reopen/check",
		strings.NewReader(`{"email":"u@example.com"}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	w = perform(router, http.MethodGet, "/api/self/v1/chamados/404", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestUserStatus(t *testing.T) {
	models.SetNotifyHub(models.NewHub())
	t.Cleanup(func() { models.SetNotifyHub(nil) })

	w := perform(setupRouter(), http.MethodGet, "/api/self/v1/status", nil, "")
	var resp types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Running || !resp.NotifyWSEnabled || resp.NotifyClients != 0 {
		t.Errorf("Unexpected status %+v", resp)
	}
}

func TestStagingSubmitKeepsFilesAddedInFlight(t *testing.T) {
	arrived := make(chan []string, 1)
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/ti/painel/api/chamados/9/ticket-com-anexos", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var names []string
		for _, fh := range r.MultipartForm.File["anexos"] {
			names = append(names, fh.Filename)
		}
		arrived <- names
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"Ticket enviado"}`))
	})
	setupPanel(t, mux)

	router := setupRouter()
	sessionId := createSession(t, router)
	base := "/api/self/v1/staging/" + sessionId

	body, ct := multipartBody(t, uploadPart{name: "a.txt", contentType: "text/plain", data: []byte("first")})
	if w := perform(router, http.MethodPost, base+"/files", body, ct); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	submitted := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		submitted <- perform(router, http.MethodPost, base+"/submit?chamadoId=9",
			strings.NewReader(`{"assunto":"s","mensagem":"m"}`), "application/json")
	}()
	sent := <-arrived

	body, ct = multipartBody(t, uploadPart{name: "late.txt", contentType: "text/plain", data: []byte("second")})
	w := perform(router, http.MethodPost, base+"/files", body, ct)
	if added := decodeData[types.StagingAddResponse](t, w); added.Accepted != 1 {
		t.Fatalf("Expected late.txt to be accepted, got %+v", added)
	}
	close(release)

	w = <-submitted
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(sent) != 1 || sent[0] != "a.txt" {
		t.Errorf("Backend received %v", sent)
	}
	resp := decodeData[types.SubmitTicketResponse](t, w)
	if resp.Attachments != 1 || resp.State.Totals.Count != 1 || resp.State.Files[0].Name != "late.txt" {
		t.Errorf("Expected late.txt to stay staged, got %+v", resp.State)
	}

	w = perform(router, http.MethodGet, base, nil, "")
	state := decodeData[types.StagingState](t, w)
	if state.Totals.Count != 1 || state.Totals.TotalSizeBytes != int64(len("second")) {
		t.Errorf("Unexpected state after submit: %+v", state)
	}
}
