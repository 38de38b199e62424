// Package systemd reports service state to systemd through sd_notify.
//
// Every call is a no-op returning nil when the process was not started by
// systemd (NOTIFY_SOCKET unset).
package systemd

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages.
type Notifier struct {
	// watchdog is the interval systemd expects pings at; zero when disabled.
	watchdog time.Duration
}

// New inspects the environment once.
func New() *Notifier {
	n := &Notifier{}
	if d, err := daemon.SdWatchdogEnabled(false); err == nil {
		n.watchdog = d
	}
	return n
}

// WatchdogInterval is WatchdogSec from the unit, or zero.
func (n *Notifier) WatchdogInterval() time.Duration { return n.watchdog }

func (n *Notifier) Ready() error { return n.send(daemon.SdNotifyReady) }

func (n *Notifier) Stopping() error { return n.send(daemon.SdNotifyStopping) }

// Watchdog pings the watchdog. Skipped when the unit has none configured.
func (n *Notifier) Watchdog() error {
	if n.watchdog <= 0 {
		return nil
	}
	return n.send(daemon.SdNotifyWatchdog)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(s string) error { return n.send("STATUS=" + s) }

func (n *Notifier) send(state string) error {
	_, err := daemon.SdNotify(false, state)
	return err
}
