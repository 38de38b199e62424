package config

// Config is the on-disk configuration (JSON or YAML).
//
// Every secret can also come from the environment (or a .env file); see
// ApplyEnv for the variable names. Durations are Go duration strings.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poller    PollerConfig    `json:"poller"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
}

// PracticumConfig describes the homework status API.
type PracticumConfig struct {
	Token    string `json:"token"`
	Endpoint string `json:"endpoint"`
	// Timeout bounds a single status request (default "30s").
	Timeout string `json:"timeout,omitempty"`
}

// TelegramConfig describes the notification sink.
//
// ChatID is either a numeric chat id or a public "@channel" username.
type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID string `json:"chat_id"`
	// APIURL overrides the Bot API base URL (self-hosted bot API server).
	APIURL string `json:"api_url,omitempty"`
	// SendTimeout bounds a single sendMessage call (default "10s").
	SendTimeout string `json:"send_timeout,omitempty"`
	// RatePerSec caps outgoing messages; 0 means unlimited.
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// PollerConfig controls the polling loop.
type PollerConfig struct {
	// RetryPeriod is the fixed delay between cycles: "10m" or "@every 10m".
	RetryPeriod   string `json:"retry_period,omitempty"`
	NotifyOnStart bool   `json:"notify_on_start,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the cycle journal.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./data/journal.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
	// Retain caps the journal size in records; 0 keeps everything.
	Retain int `json:"retain,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Console: true},
	}
}
