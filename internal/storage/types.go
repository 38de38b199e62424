package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines file at Path
//   - "sqlite": SQLite database file at Path
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	// Retain caps the number of kept records; 0 keeps everything.
	Retain int
}

// Record is one poll cycle.
// Keep it compact and schema-stable.
type Record struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Outcome    string    `json:"outcome"`
	Checkpoint int64     `json:"checkpoint"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	TookMS     int64     `json:"took_ms"`
}
