package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/moyoez/ticketpanel-go/api/controllers"
	"github.com/moyoez/ticketpanel-go/api/middlewares"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/tool"
)

// Server is the local HTTP API the panel web UI talks to.
type Server struct {
	port   int
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer creates a new API server instance listening on port.
func NewServer(port int) *Server {
	return &Server{port: port}
}

// Handler builds the route table without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(middlewares.AllowAllCORS())

	self := engine.Group("/api/self/v1", middlewares.OnlyAllowLocal)
	{
		self.POST("/staging", controllers.UserCreateStaging)                               // Open a staging session for the ticket modal
		self.GET("/staging/:sessionId", controllers.UserStagingGet)                        // Staged files and totals
		self.DELETE("/staging/:sessionId", controllers.UserStagingDismiss)                 // Modal dismissed
		self.POST("/staging/:sessionId/files", controllers.UserStagingAddFiles)            // Validate and stage picked files
		self.DELETE("/staging/:sessionId/files/:index", controllers.UserStagingRemoveFile) // Remove one staged file
		self.POST("/staging/:sessionId/submit", controllers.UserStagingSubmit)             // Send the ticket e-mail

		self.GET("/agents", controllers.UserAvailableAgents)
		self.GET("/chamados/:id", controllers.UserGetChamado)
		self.GET("/chamados/:id/transfers", controllers.UserTransferHistory)
		self.POST("/chamados/:id/transfer", controllers.UserTransferChamado)
		self.GET("/chamados/:id/reopenings", controllers.UserReopenings)
		self.POST("/reopen/check", controllers.UserCheckReopen)
		self.POST("/reopen", controllers.UserReopen)

		self.GET("/status", controllers.UserStatus) // Running and notify_ws_enabled for web UI
		self.GET("/config", controllers.UserConfigGet)
		self.POST("/caches/clear", controllers.UserClearCaches)
		if hub := models.GetNotifyHub(); hub != nil {
			self.GET("/notify-ws", controllers.HandleNotifyWS(hub))
		}
	}
	return engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on http://%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
