package tool

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/ticketpanel-go/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	currentConfig types.AppConfig
	configMu      sync.RWMutex
)

// DefaultAllowedTypes mirrors what the ticket modal accepts: images, videos, office documents, pdf and text.
var DefaultAllowedTypes = []string{
	"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp", "image/bmp",
	"video/mp4", "video/avi", "video/quicktime", "video/x-ms-wmv", "video/x-flv",
	"video/webm", "video/x-matroska",
	"application/pdf", "application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
}

// CacheTTLs are the parsed cache section of the config.
type CacheTTLs struct {
	Agents          time.Duration
	Transfers       time.Duration
	Reopen          time.Duration
	RefreshInterval time.Duration
}

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		BaseURL:           "http://localhost:5000",
		Port:              53380,
		RequestTimeout:    "30s",
		RequestsPerSecond: 10,
		ReopenDaysLimit:   7,
		Attachments: types.AttachmentConfig{
			MaxFileSize:  "10 MiB",
			MaxTotalSize: "50 MiB",
			AllowedTypes: append([]string(nil), DefaultAllowedTypes...),
		},
		Cache: types.CacheConfig{
			Agents:          "30s",
			Transfers:       "1m",
			Reopen:          "5m",
			RefreshInterval: "5m",
		},
	}
}

// LoadConfig reads path (or ConfigPath) and writes a default file when none exists.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %w", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			setCurrentConfig(cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if _, err := AttachmentConstraintsFromConfig(cfg); err != nil {
		return cfg, err
	}
	if _, err := CacheTTLsFromConfig(cfg); err != nil {
		return cfg, err
	}

	setCurrentConfig(cfg)
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func setCurrentConfig(cfg types.AppConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	currentConfig = cfg
}

func GetCurrentConfig() types.AppConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig
}

// AttachmentConstraintsFromConfig parses the human readable limits of cfg.
func AttachmentConstraintsFromConfig(cfg types.AppConfig) (types.AttachmentConstraints, error) {
	maxFile, err := humanize.ParseBytes(cfg.Attachments.MaxFileSize)
	if err != nil {
		return types.AttachmentConstraints{}, fmt.Errorf("invalid attachments.maxFileSize %q: %w", cfg.Attachments.MaxFileSize, err)
	}
	maxTotal, err := humanize.ParseBytes(cfg.Attachments.MaxTotalSize)
	if err != nil {
		return types.AttachmentConstraints{}, fmt.Errorf("invalid attachments.maxTotalSize %q: %w", cfg.Attachments.MaxTotalSize, err)
	}
	return types.AttachmentConstraints{
		MaxFileSizeBytes:  int64(maxFile),
		MaxTotalSizeBytes: int64(maxTotal),
		AllowedMimeTypes:  append([]string(nil), cfg.Attachments.AllowedTypes...),
	}, nil
}

// CacheTTLsFromConfig parses the cache section of cfg.
func CacheTTLsFromConfig(cfg types.AppConfig) (CacheTTLs, error) {
	var ttls CacheTTLs
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"cache.agents", cfg.Cache.Agents, &ttls.Agents},
		{"cache.transfers", cfg.Cache.Transfers, &ttls.Transfers},
		{"cache.reopen", cfg.Cache.Reopen, &ttls.Reopen},
		{"cache.refreshInterval", cfg.Cache.RefreshInterval, &ttls.RefreshInterval},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return CacheTTLs{}, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = d
	}
	return ttls, nil
}

// RequestTimeoutFromConfig falls back to DefaultTimeout when the value is empty or invalid.
func RequestTimeoutFromConfig(cfg types.AppConfig) time.Duration {
	if cfg.RequestTimeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || d <= 0 {
		DefaultLogger.Warnf("Invalid requestTimeout %q, using %s", cfg.RequestTimeout, DefaultTimeout)
		return DefaultTimeout
	}
	return d
}

// ApplyFlagOverrides folds CLI overrides into the loaded config and makes the result current.
func ApplyFlagOverrides(appCfg types.AppConfig, flags types.Config) types.AppConfig {
	if flags.UseBaseURL != "" {
		appCfg.BaseURL = flags.UseBaseURL
	}
	if flags.UsePort > 0 {
		appCfg.Port = flags.UsePort
	}
	setCurrentConfig(appCfg)
	return appCfg
}
