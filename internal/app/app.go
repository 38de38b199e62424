package app

import (
	"context"
	"errors"
	"time"

	"homeworkbot/internal/config"
	"homeworkbot/internal/homework"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/poller"
	"homeworkbot/internal/storage"
	kit "homeworkbot/internal/transport"
	telegram "homeworkbot/internal/transport/telegram/adapter"
	logx "homeworkbot/pkg/logx"
	"homeworkbot/pkg/systemd"
)

// App wires the poll loop from a validated Config.
type App struct {
	cfg *Config

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	sender kit.Sender
	notif  *notifier.Service
	client *homework.Client
	ctrl   *poller.Controller
	driver *poller.Driver
}

// Option adjusts wiring; tests use it to swap the clock, the sink or the
// logger.
type Option func(*options)

type options struct {
	clock     poller.Clock
	sender    kit.Sender
	log       *logx.Logger
	lifecycle poller.Lifecycle
}

func WithClock(c poller.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithSender(s kit.Sender) Option {
	return func(o *options) { o.sender = s }
}

func WithLogger(l logx.Logger) Option {
	return func(o *options) { o.log = &l }
}

func WithLifecycle(lc poller.Lifecycle) Option {
	return func(o *options) { o.lifecycle = lc }
}

// New builds every component. cfg must have passed config.Validate.
func New(cfg *Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	o := options{clock: poller.SystemClock()}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		logSvc *logx.Service
		log    logx.Logger
	)
	if o.log != nil {
		log = *o.log
	} else {
		logSvc, log = logx.New(logx.Config{
			Level:   cfg.Logging.Level,
			Console: cfg.Logging.Console,
			File: logx.FileConfig{
				Enabled: cfg.Logging.File.Enabled,
				Path:    cfg.Logging.File.Path,
			},
		})
	}
	a := &App{cfg: cfg, logs: logSvc, log: log.With(logx.String("comp", "app"))}

	fail := func(err error) (*App, error) {
		_ = a.Close()
		return nil, err
	}

	schedule, err := config.RetrySchedule(cfg)
	if err != nil {
		return fail(err)
	}
	target, err := kit.ParseChatTarget(cfg.Telegram.ChatID)
	if err != nil {
		return fail(err)
	}

	// Storage (optional)
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return fail(err)
	} else if enabled {
		st, err := storage.Open(sc, log)
		if err != nil {
			return fail(err)
		}
		a.store = st
		a.log.Info("journal enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	sender := o.sender
	if sender == nil {
		tcfg, err := mapTelegramConfig(cfg)
		if err != nil {
			return fail(err)
		}
		ad, err := telegram.New(tcfg, log)
		if err != nil {
			return fail(err)
		}
		sender = ad
	}
	a.sender = sender

	ncfg, err := mapNotifierConfig(cfg)
	if err != nil {
		return fail(err)
	}
	a.notif = notifier.New(ncfg, sender, target, log)

	reqTimeout, err := parseDurationOrDefault("practicum.timeout", cfg.Practicum.Timeout, config.DefaultRequestTimeout)
	if err != nil {
		return fail(err)
	}
	a.client, err = homework.NewClient(cfg.Practicum.Endpoint, cfg.Practicum.Token, homework.WithTimeout(reqTimeout))
	if err != nil {
		return fail(err)
	}

	checkpoint := o.clock.Now().Unix()
	a.ctrl = poller.NewController(a.client, a.notif, checkpoint, log.With(logx.String("comp", "controller")))

	lc := o.lifecycle
	if lc == nil {
		lc = systemd.New()
	}
	a.driver = poller.NewDriver(a.ctrl, schedule, log.With(logx.String("comp", "poller")),
		poller.WithClock(o.clock),
		poller.WithJournal(a.store),
		poller.WithLifecycle(lc),
		poller.WithStartNotice(cfg.Poller.NotifyOnStart),
	)

	a.log.Info("configured",
		logx.String("endpoint", cfg.Practicum.Endpoint),
		logx.String("chat", target.String()),
		logx.Duration("retry_period", schedule.Delay),
		logx.Int64("checkpoint", checkpoint),
	)
	return a, nil
}

// NewApp loads, validates and wires the config at cfgPath.
func NewApp(cfgPath string) (*App, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Run blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.driver.Run(ctx)
}

// RunN runs n cycles; used by tests and one-shot invocations.
func (a *App) RunN(ctx context.Context, n int) error {
	return a.driver.RunN(ctx, n)
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) State() poller.State { return a.ctrl.State() }

// History returns texts delivered since start.
func (a *App) History() []notifier.HistoryItem { return a.notif.Snapshot() }

// Close releases the journal and log file.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logs != nil {
		errs = append(errs, a.logs.Close())
		a.logs = nil
	}
	return errors.Join(errs...)
}

func mapTelegramConfig(cfg *Config) (telegram.Config, error) {
	timeout, err := parseDurationOrDefault("telegram.send_timeout", cfg.Telegram.SendTimeout, config.DefaultSendTimeout)
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{
		Token:   cfg.Telegram.Token,
		APIURL:  cfg.Telegram.APIURL,
		Timeout: timeout,
	}, nil
}

func mapNotifierConfig(cfg *Config) (notifier.Config, error) {
	timeout, err := parseDurationOrDefault("telegram.send_timeout", cfg.Telegram.SendTimeout, config.DefaultSendTimeout)
	if err != nil {
		return notifier.Config{}, err
	}
	if cfg.Telegram.RatePerSec < 0 {
		return notifier.Config{}, errors.New("telegram.rate_per_sec must be >= 0")
	}
	// Slightly above the HTTP client timeout of the adapter.
	return notifier.Config{
		RatePerSec:  cfg.Telegram.RatePerSec,
		SendTimeout: timeout + 2*time.Second,
	}, nil
}
