package app

import (
	"fmt"
	"strings"
	"time"

	"homeworkbot/internal/storage"
	logx "homeworkbot/pkg/logx"
)

func mapStorageConfig(cfg *Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.TrimSpace(sc.Driver)
	if driver == "" || strings.EqualFold(driver, "none") {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)
	if path == "" {
		return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=%s", driver)
	}

	dl := strings.ToLower(driver)
	switch dl {
	case "file":
		return storage.Config{Driver: "file", Path: path, Retain: sc.Retain}, true, nil
	case "sqlite", "sqlite3":
		busy, err := parseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, 1*time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: dl, Path: path, BusyTimeout: busy, Retain: sc.Retain}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", driver)
	}
}

// OpenJournal opens the journal configured in cfg. It returns
// storage.ErrDisabled when no journal is configured.
func OpenJournal(cfg *Config, log logx.Logger) (storage.Store, error) {
	sc, enabled, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, storage.ErrDisabled
	}
	return storage.Open(sc, log)
}
