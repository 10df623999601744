package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	BaseURL           string           `yaml:"baseUrl" json:"baseUrl"`                     // panel backend, e.g. http://localhost:5000
	Port              int              `yaml:"port" json:"port"`                           // local API port for the web UI
	RequestTimeout    string           `yaml:"requestTimeout" json:"requestTimeout"`       // Go duration, e.g. 30s
	RequestsPerSecond float64          `yaml:"requestsPerSecond" json:"requestsPerSecond"` // 0 disables the limiter
	ReopenDaysLimit   int              `yaml:"reopenDaysLimit" json:"reopenDaysLimit"`
	Attachments       AttachmentConfig `yaml:"attachments" json:"attachments"`
	Cache             CacheConfig      `yaml:"cache" json:"cache"`
}

// AttachmentConfig holds attachment limits; sizes are human readable ("10 MiB").
type AttachmentConfig struct {
	MaxFileSize  string   `yaml:"maxFileSize" json:"maxFileSize"`
	MaxTotalSize string   `yaml:"maxTotalSize" json:"maxTotalSize"`
	AllowedTypes []string `yaml:"allowedTypes,omitempty" json:"allowedTypes,omitempty"`
}

// CacheConfig holds per-lookup TTLs as Go durations.
type CacheConfig struct {
	Agents          string `yaml:"agents" json:"agents"`
	Transfers       string `yaml:"transfers" json:"transfers"`
	Reopen          string `yaml:"reopen" json:"reopen"`
	RefreshInterval string `yaml:"refreshInterval" json:"refreshInterval"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log           string
	UseConfigPath string
	UseBaseURL    string
	UsePort       int
	SkipNotify    bool   // if true, the notify websocket is not registered.
	NotifySocket  string // Unix socket of a desktop notifier, empty disables it
}
