package app

import (
	"time"

	"homeworkbot/internal/config"
)

// ---- Config ----

type Config = config.Config

type ConfigManager = config.ConfigManager

var NewConfigManager = config.NewConfigManager

// DefaultEnvFiles are read, when present, after the config file and before
// the process environment.
var DefaultEnvFiles = []string{".env"}

// LoadConfig reads path (may be empty), the env files and the process
// environment, then validates the result. A config.ErrMissing error means
// required values are absent.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfgm := NewConfigManager(path)
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	cfgm.SetEnvFiles(envFiles...)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	return config.ParseDurationOrDefault(path, raw, def)
}
