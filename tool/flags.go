package tool

import (
	"flag"

	"github.com/moyoez/ticketpanel-go/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseBaseURL, "useBaseUrl", "", "override panel backend base URL")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override local API port")
	flag.BoolVar(&cfg.SkipNotify, "skipNotify", false, "if true, do not expose the notify websocket")
	flag.StringVar(&cfg.NotifySocket, "useNotifySocket", "", "Unix socket of a desktop notifier")
	flag.Parse()
	return cfg
}
