package config

import "strings"

// Environment variable names. The alternatives are the names used by the
// first deployments of the bot and are still honored.
var (
	envPracticumToken = []string{"PRACTICUM_TOKEN", "SECRET_TOKEN"}
	envTelegramToken  = []string{"TELEGRAM_TOKEN"}
	envChatID         = []string{"TELEGRAM_CHAT_ID", "CHAT_ID"}
	envEndpoint       = []string{"ENDPOINT"}
	envRetryPeriod    = []string{"RETRY_PERIOD"}
	envLogLevel       = []string{"LOG_LEVEL"}
)

// ApplyEnv overrides cfg fields with non-empty environment values.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if cfg == nil || lookup == nil {
		return
	}
	set := func(dst *string, names []string) {
		for _, n := range names {
			if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	set(&cfg.Practicum.Token, envPracticumToken)
	set(&cfg.Practicum.Endpoint, envEndpoint)
	set(&cfg.Telegram.Token, envTelegramToken)
	set(&cfg.Telegram.ChatID, envChatID)
	set(&cfg.Poller.RetryPeriod, envRetryPeriod)
	set(&cfg.Logging.Level, envLogLevel)
}
