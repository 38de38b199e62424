package notifier

import "time"

// Config controls outgoing notifications.
type Config struct {
	// RatePerSec caps sends with a token bucket; 0 disables the limiter.
	RatePerSec int
	// SendTimeout bounds a single delivery attempt (default 10s).
	SendTimeout time.Duration
	// HistorySize is the number of delivered texts kept in memory (default 300).
	HistorySize int
}

type HistoryItem struct {
	At   time.Time
	Text string
}
