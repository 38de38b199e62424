package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"

	"golang.org/x/time/rate"
)

const (
	defaultSendTimeout = 10 * time.Second
	defaultHistorySize = 300
)

// Service sends notifications synchronously.
//
// It is safe for concurrent use, although the poll loop calls it from a
// single goroutine.
type Service struct {
	log    logx.Logger
	sender kit.Sender
	target kit.ChatTarget

	cfg     Config
	limiter *rate.Limiter
	now     func() time.Time

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, target kit.ChatTarget, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	s := &Service{
		log:    log.With(logx.String("comp", "notifier"), logx.String("chat", target.String())),
		sender: sender,
		target: target,
		cfg:    cfg,
		now:    time.Now,
	}
	if cfg.RatePerSec > 0 {
		// Token bucket: burst = rate per sec, so short spikes don't block too hard.
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return s
}

// Send delivers text once and reports whether the sink accepted it.
func (s *Service) Send(ctx context.Context, text string) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.sender == nil || s.target.IsZero() {
		s.log.Error("notification dropped: no sender configured")
		return false
	}
	if strings.TrimSpace(text) == "" {
		s.log.Error("notification dropped: empty text")
		return false
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Error("notification not sent: rate limiter wait aborted", logx.Err(err))
			return false
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	ref, err := s.safeSend(callCtx, text)
	if err != nil {
		s.log.Error("notification delivery failed", logx.Err(err), logx.Int("len", len([]rune(text))))
		return false
	}
	s.appendHistory(text)
	s.log.Debug("notification delivered", logx.Int("message_id", ref.MessageID))
	return true
}

// safeSend converts a sink panic into an error.
func (s *Service) safeSend(ctx context.Context, text string) (ref kit.MessageRef, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{v: r}
		}
	}()
	return s.sender.SendText(ctx, s.target, text, nil)
}

type panicError struct{ v any }

func (p panicError) Error() string { return "sender panic: " + fmt.Sprint(p.v) }

// Snapshot returns delivered notifications, oldest first.
func (s *Service) Snapshot() []HistoryItem {
	s.hmu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return out
}

func (s *Service) appendHistory(text string) {
	s.hmu.Lock()
	s.history = append(s.history, HistoryItem{At: s.now(), Text: text})
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.hmu.Unlock()
}
