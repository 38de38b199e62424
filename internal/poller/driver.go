package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"homeworkbot/internal/storage"
	logx "homeworkbot/pkg/logx"
)

// StartText is sent once when NotifyOnStart is set.
const StartText = "Bot started"

const journalTimeout = 2 * time.Second

// Lifecycle receives service manager notifications. All methods are
// best-effort; errors are logged at debug level.
type Lifecycle interface {
	Ready() error
	Watchdog() error
	Stopping() error
	Status(s string) error
	// WatchdogInterval is how often Watchdog must be called; zero disables
	// pings during the retry delay.
	WatchdogInterval() time.Duration
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithClock replaces the wall clock.
func WithClock(c Clock) DriverOption {
	return func(d *Driver) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithJournal appends one record per cycle to st.
func WithJournal(st storage.Store) DriverOption {
	return func(d *Driver) { d.journal = st }
}

// WithLifecycle reports readiness, liveness and shutdown to lc.
func WithLifecycle(lc Lifecycle) DriverOption {
	return func(d *Driver) { d.lc = lc }
}

// WithStartNotice sends StartText before the first cycle.
func WithStartNotice(on bool) DriverOption {
	return func(d *Driver) { d.startNotice = on }
}

// Driver repeats Controller cycles with a fixed delay until its context is
// cancelled.
type Driver struct {
	ctrl  *Controller
	sched cron.Schedule
	clock Clock
	log   logx.Logger

	journal     storage.Store
	lc          Lifecycle
	startNotice bool
}

// NewDriver builds a driver sleeping according to sched between cycles.
// Use a constant-delay schedule (cron.Every) for a fixed retry interval.
func NewDriver(ctrl *Controller, sched cron.Schedule, log logx.Logger, opts ...DriverOption) *Driver {
	if log.IsZero() {
		log = logx.Nop()
	}
	d := &Driver{ctrl: ctrl, sched: sched, clock: SystemClock(), log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run loops until ctx is cancelled and then returns nil.
func (d *Driver) Run(ctx context.Context) error {
	return d.run(ctx, -1)
}

// RunN runs at most n cycles, each followed by the retry delay.
func (d *Driver) RunN(ctx context.Context, n int) error {
	if n < 0 {
		n = 0
	}
	return d.run(ctx, n)
}

func (d *Driver) run(ctx context.Context, n int) error {
	d.lifecycle("ready", d.lcReady)
	defer d.lifecycle("stopping", d.lcStopping)

	d.log.Info("polling started", logx.Int64("checkpoint", d.ctrl.State().Checkpoint))
	if d.startNotice {
		d.ctrl.Announce(ctx, StartText)
	}

	for i := 0; n < 0 || i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		res := d.iterate(ctx)
		d.lifecycle("watchdog", d.lcWatchdog)
		d.lifecycle("status", func() error {
			return d.lc.Status(fmt.Sprintf("last cycle %s at %s", res.Outcome, d.clock.Now().UTC().Format(time.RFC3339)))
		})
		if !d.sleep(ctx) {
			break
		}
	}
	d.log.Info("polling stopped", logx.Int64("checkpoint", d.ctrl.State().Checkpoint))
	return nil
}

// iterate runs one cycle and contains every error it produces.
func (d *Driver) iterate(ctx context.Context) Result {
	id := uuid.NewString()
	start := d.clock.Now()
	log := d.log.With(logx.String("cycle", id))

	res, err := d.ctrl.Cycle(ctx)
	took := d.clock.Now().Sub(start)

	fields := []logx.Field{
		logx.String("outcome", string(res.Outcome)),
		logx.Int64("checkpoint", res.Checkpoint),
		logx.Duration("took", took),
	}
	switch {
	case err != nil && Classify(err) == ClassTransient:
		log.Warn("cycle failed: api unreachable", append(fields, logx.Err(err))...)
	case err != nil:
		log.Error("cycle failed", append(fields, logx.Err(err))...)
		if ctx.Err() == nil {
			rep := d.ctrl.Report(ctx, FailureText(err))
			log.Debug("failure report", logx.String("report", string(rep)))
		}
	case res.Outcome == OutcomeNotified:
		log.Info("status change delivered", append(fields, logx.String("message", res.Message))...)
	case res.Outcome == OutcomeDeliveryFailed:
		log.Warn("status change not delivered; will retry on next change", fields...)
	default:
		log.Debug("cycle done", append(fields, logx.Int("items", res.Items))...)
	}

	d.record(ctx, storage.Record{
		ID:         id,
		At:         start,
		Outcome:    string(res.Outcome),
		Checkpoint: res.Checkpoint,
		Message:    res.Message,
		Error:      errString(err),
		TookMS:     took.Milliseconds(),
	}, log)
	return res
}

func (d *Driver) record(ctx context.Context, r storage.Record, log logx.Logger) {
	if d.journal == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := d.journal.Append(jctx, r); err != nil {
		log.Warn("journal append failed", logx.Err(err))
	}
}

// sleep waits for the next scheduled run, pinging the watchdog at half its
// interval meanwhile. It returns false when ctx ends.
func (d *Driver) sleep(ctx context.Context) bool {
	remaining := d.delay(d.clock.Now())
	step := remaining
	if d.lc != nil {
		if half := d.lc.WatchdogInterval() / 2; half > 0 && half < step {
			step = half
		}
	}
	for {
		wait := min(step, remaining)
		select {
		case <-d.clock.After(wait):
		case <-ctx.Done():
			return false
		}
		remaining -= wait
		if remaining <= 0 {
			return true
		}
		d.lifecycle("watchdog", d.lcWatchdog)
	}
}

// delay is the wait before the cycle after now. A constant-delay schedule is
// used as-is; cron.Schedule.Next would align it to whole seconds.
func (d *Driver) delay(now time.Time) time.Duration {
	if cd, ok := d.sched.(cron.ConstantDelaySchedule); ok {
		return cd.Delay
	}
	if wait := d.sched.Next(now).Sub(now); wait > 0 {
		return wait
	}
	return 0
}

func (d *Driver) lcReady() error    { return d.lc.Ready() }
func (d *Driver) lcWatchdog() error { return d.lc.Watchdog() }
func (d *Driver) lcStopping() error { return d.lc.Stopping() }

func (d *Driver) lifecycle(what string, fn func() error) {
	if d.lc == nil {
		return
	}
	if err := fn(); err != nil {
		d.log.Debug("service manager notify failed", logx.String("state", what), logx.Err(err))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
