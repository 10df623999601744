package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/ticketpanel-go/api"
	"github.com/moyoez/ticketpanel-go/api/models"
	"github.com/moyoez/ticketpanel-go/notify"
	"github.com/moyoez/ticketpanel-go/panel"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

func main() {
	cfg := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	appCfg = tool.ApplyFlagOverrides(appCfg, cfg)

	constraints, err := tool.AttachmentConstraintsFromConfig(appCfg)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	ttls, err := tool.CacheTTLsFromConfig(appCfg)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	models.SetAttachmentConstraints(constraints)
	tool.InitHTTPClients(tool.RequestTimeoutFromConfig(appCfg))

	var notifier types.NotifyHub
	if cfg.SkipNotify {
		tool.DefaultLogger.Info("Notify websocket disabled")
	} else {
		hub := models.NewHub()
		models.SetNotifyHub(hub)
		dispatcher := notify.NewDispatcher(hub, cfg.NotifySocket)
		models.SetNotifier(dispatcher)
		notifier = dispatcher
	}

	client := panel.NewClient(panel.Options{
		BaseURL:           appCfg.BaseURL,
		HTTPClient:        tool.GetHttpClient(),
		RequestsPerSecond: appCfg.RequestsPerSecond,
		TTLs:              ttls,
		ReopenDaysLimit:   appCfg.ReopenDaysLimit,
		Notifier:          notifier,
	})
	models.SetPanelClient(client)
	tool.DefaultLogger.Infof("Panel backend: %s (attachments up to %s each, %s total)",
		appCfg.BaseURL, tool.FormatSize(constraints.MaxFileSizeBytes), tool.FormatSize(constraints.MaxTotalSizeBytes))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go client.RunRefresher(ctx, client.RefreshInterval())

	apiServer := api.NewServer(appCfg.Port)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	<-ctx.Done()
	tool.DefaultLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("API server shutdown failed: %v", err)
	}
}
