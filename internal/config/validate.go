package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	logx "homeworkbot/pkg/logx"
)

// ErrMissing is matched (errors.Is) by every MissingError.
var ErrMissing = errors.New("missing required configuration")

// MissingError lists the required keys that were empty.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

func (e *MissingError) Is(target error) bool { return target == ErrMissing }

const (
	DefaultRetryPeriod    = 10 * time.Minute
	DefaultRequestTimeout = 30 * time.Second
	DefaultSendTimeout    = 10 * time.Second
)

// Validate checks the required values first (reporting all missing keys at
// once), then the optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &MissingError{Keys: []string{"practicum.token", "telegram.token", "telegram.chat_id", "practicum.endpoint"}}
	}

	var missing []string
	for _, r := range []struct {
		key, val string
	}{
		{"practicum.token", cfg.Practicum.Token},
		{"telegram.token", cfg.Telegram.Token},
		{"telegram.chat_id", cfg.Telegram.ChatID},
		{"practicum.endpoint", cfg.Practicum.Endpoint},
	} {
		if strings.TrimSpace(r.val) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}

	u, err := url.Parse(cfg.Practicum.Endpoint)
	if err != nil {
		return fmt.Errorf("practicum.endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("practicum.endpoint: URL must have a scheme (http:// or https://)")
	}
	if _, err := RetrySchedule(cfg); err != nil {
		return err
	}
	if _, err := ParseDurationField("practicum.timeout", cfg.Practicum.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.send_timeout", cfg.Telegram.SendTimeout); err != nil {
		return err
	}
	if cfg.Telegram.RatePerSec < 0 {
		return fmt.Errorf("telegram.rate_per_sec must be >= 0")
	}
	if !logx.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	if sc := cfg.Storage; sc != nil {
		switch strings.ToLower(strings.TrimSpace(sc.Driver)) {
		case "", "none":
		case "file", "sqlite", "sqlite3":
			if strings.TrimSpace(sc.Path) == "" {
				return fmt.Errorf("storage.path is required for driver %q", sc.Driver)
			}
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", sc.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", sc.BusyTimeout); err != nil {
			return err
		}
		if sc.Retain < 0 {
			return fmt.Errorf("storage.retain must be >= 0")
		}
	}
	return nil
}

// RetrySchedule returns the fixed-delay schedule between poll cycles.
//
// Accepted forms: a Go duration ("10m"), a plain number of seconds ("600")
// or a cron "@every" descriptor ("@every 10m"). Calendar cron expressions
// are rejected: the delay between cycles must be constant.
func RetrySchedule(cfg *Config) (cron.ConstantDelaySchedule, error) {
	raw := ""
	if cfg != nil {
		raw = strings.TrimSpace(cfg.Poller.RetryPeriod)
	}
	if raw == "" {
		return cron.Every(DefaultRetryPeriod), nil
	}
	if strings.HasPrefix(raw, "@") {
		s, err := cron.ParseStandard(raw)
		if err != nil {
			return cron.ConstantDelaySchedule{}, fmt.Errorf("poller.retry_period: %w", err)
		}
		cd, ok := s.(cron.ConstantDelaySchedule)
		if !ok {
			return cron.ConstantDelaySchedule{}, fmt.Errorf("poller.retry_period: %q is not a fixed interval", raw)
		}
		return cd, nil
	}
	var d time.Duration
	if secs, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(secs) * time.Second
	} else if d, err = ParseDurationField("poller.retry_period", raw); err != nil {
		return cron.ConstantDelaySchedule{}, err
	}
	if d < time.Second {
		return cron.ConstantDelaySchedule{}, fmt.Errorf("poller.retry_period must be at least 1s")
	}
	return cron.Every(d), nil
}
