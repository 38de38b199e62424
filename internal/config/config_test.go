package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	path := writeFile(t, "bot.yaml", `
practicum:
  token: file-token
  endpoint: https://example.com/api/homework_statuses/
telegram:
  token: tg-file
  chat_id: "100"
poller:
  retry_period: 5m
logging:
  level: debug
  console: true
`)
	m := NewConfigManager(path)
	m.SetLookupEnv(envMap(map[string]string{"TELEGRAM_CHAT_ID": "42"}))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Practicum.Token != "file-token" {
		t.Fatalf("practicum token = %q", cfg.Practicum.Token)
	}
	if cfg.Telegram.ChatID != "42" {
		t.Fatalf("env should override chat id, got %q", cfg.Telegram.ChatID)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	sched, err := RetrySchedule(cfg)
	if err != nil {
		t.Fatalf("RetrySchedule: %v", err)
	}
	if sched.Delay != 5*time.Minute {
		t.Fatalf("delay = %v, want 5m", sched.Delay)
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the loaded config")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "bot.json", `{"practicum":{"token":"x","retry":"1m"}}`)
	if _, err := NewConfigManager(path).Load(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewConfigManager("/nonexistent/bot.yaml").Load()
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoadFromDotenvAndLegacyNames(t *testing.T) {
	envFile := writeFile(t, ".env", "SECRET_TOKEN=dot-secret\nTELEGRAM_TOKEN=dot-tg\nCHAT_ID=7\nENDPOINT=https://example.com/\n")
	m := NewConfigManager("")
	m.SetEnvFiles(envFile, filepath.Join(t.TempDir(), "missing.env"))
	m.SetLookupEnv(envMap(map[string]string{"TELEGRAM_TOKEN": "proc-tg"}))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Practicum.Token != "dot-secret" {
		t.Fatalf("practicum token = %q", cfg.Practicum.Token)
	}
	if cfg.Telegram.Token != "proc-tg" {
		t.Fatalf("process env should win over .env, got %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.ChatID != "7" {
		t.Fatalf("chat id = %q", cfg.Telegram.ChatID)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateReportsAllMissingKeys(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "tg"
	err := Validate(cfg)
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	var me *MissingError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MissingError, got %T", err)
	}
	want := []string{"practicum.token", "telegram.chat_id", "practicum.endpoint"}
	if strings.Join(me.Keys, ",") != strings.Join(want, ",") {
		t.Fatalf("keys = %v, want %v", me.Keys, want)
	}
}

func TestValidateWhitespaceIsMissing(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.ChatID = "   "
	if err := Validate(cfg); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestValidateOptionalFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad scheme", func(c *Config) { c.Practicum.Endpoint = "example.com/api" }, "scheme"},
		{"bad retry", func(c *Config) { c.Poller.RetryPeriod = "soon" }, "poller.retry_period"},
		{"calendar cron", func(c *Config) { c.Poller.RetryPeriod = "@hourly" }, "not a fixed interval"},
		{"sub-second retry", func(c *Config) { c.Poller.RetryPeriod = "500ms" }, "at least 1s"},
		{"bad timeout", func(c *Config) { c.Practicum.Timeout = "-1s" }, "practicum.timeout"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative rate", func(c *Config) { c.Telegram.RatePerSec = -1 }, "rate_per_sec"},
		{"storage without path", func(c *Config) { c.Storage = &StorageConfig{Driver: "sqlite"} }, "storage.path"},
		{"unknown driver", func(c *Config) { c.Storage = &StorageConfig{Driver: "redis", Path: "x"} }, "unknown driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
			if errors.Is(err, ErrMissing) {
				t.Fatalf("optional field error must not be ErrMissing: %v", err)
			}
		})
	}
}

func TestRetryScheduleVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", DefaultRetryPeriod},
		{"90s", 90 * time.Second},
		{"@every 2m", 2 * time.Minute},
		{"600", 10 * time.Minute},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.Poller.RetryPeriod = tt.raw
		s, err := RetrySchedule(cfg)
		if err != nil {
			t.Fatalf("RetrySchedule(%q): %v", tt.raw, err)
		}
		if s.Delay != tt.want {
			t.Fatalf("RetrySchedule(%q).Delay = %v, want %v", tt.raw, s.Delay, tt.want)
		}
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.Practicum.Token = "p"
	cfg.Practicum.Endpoint = "https://example.com/api/"
	cfg.Telegram.Token = "t"
	cfg.Telegram.ChatID = "1"
	return cfg
}
