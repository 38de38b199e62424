package poller

import (
	"context"

	"homeworkbot/internal/homework"
	logx "homeworkbot/pkg/logx"
)

// Fetcher returns the decoded status payload changed since fromDate.
// *homework.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, fromDate int64) (any, error)
}

// Notifier delivers a text once and reports success.
// *notifier.Service implements it.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

// Outcome is the logged and journaled result of one cycle.
type Outcome string

const (
	OutcomeIdle           Outcome = "idle"
	OutcomeNotified       Outcome = "notified"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeDeliveryFailed Outcome = "delivery_failed"
	OutcomeTransient      Outcome = "transient_error"
	OutcomeError          Outcome = "error"
)

// Result describes a finished cycle.
type Result struct {
	Outcome Outcome
	// Message is the rendered text, when the cycle got that far.
	Message string
	// Items is the number of homeworks in a validated response.
	Items int
	// Checkpoint is the value after the cycle.
	Checkpoint int64
}

// State is the controller's mutable state.
type State struct {
	Checkpoint  int64
	LastMessage string
}

// Controller owns the checkpoint and the last delivered message.
// It is not safe for concurrent use.
type Controller struct {
	fetch  Fetcher
	notify Notifier
	log    logx.Logger

	checkpoint  int64
	lastMessage string
}

// NewController starts from checkpoint (unix seconds) with no delivered message.
func NewController(f Fetcher, n Notifier, checkpoint int64, log logx.Logger) *Controller {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Controller{fetch: f, notify: n, log: log, checkpoint: checkpoint}
}

func (c *Controller) State() State {
	return State{Checkpoint: c.checkpoint, LastMessage: c.lastMessage}
}

// Cycle runs one fetch, validate, parse and notify pass.
//
// Only the first homework of a batch is rendered; later items are reported
// once they reach the front of the list. The checkpoint moves to the
// server's current_date as soon as the payload validates, even if parsing
// or delivery then fails.
func (c *Controller) Cycle(ctx context.Context) (Result, error) {
	v, err := c.fetch.Fetch(ctx, c.checkpoint)
	if err != nil {
		return c.failed(err), err
	}
	resp, err := homework.CheckResponse(v)
	if err != nil {
		return c.failed(err), err
	}
	c.advance(resp)

	res := Result{Items: len(resp.Homeworks), Checkpoint: c.checkpoint}
	if len(resp.Homeworks) == 0 {
		res.Outcome = OutcomeIdle
		return res, nil
	}

	msg, err := homework.ParseStatus(resp.Homeworks[0])
	if err != nil {
		res.Outcome = OutcomeError
		return res, err
	}
	res.Message = msg
	res.Outcome = c.deliver(ctx, msg)
	return res, nil
}

// Report sends text under the same rule as status changes: skipped when it
// equals the last delivered message, remembered only on delivery.
func (c *Controller) Report(ctx context.Context, text string) Outcome {
	return c.deliver(ctx, text)
}

// Announce sends text without touching the last delivered message.
func (c *Controller) Announce(ctx context.Context, text string) bool {
	return c.notify.Send(ctx, text)
}

func (c *Controller) deliver(ctx context.Context, text string) Outcome {
	if text == c.lastMessage {
		return OutcomeDuplicate
	}
	if !c.notify.Send(ctx, text) {
		return OutcomeDeliveryFailed
	}
	c.lastMessage = text
	return OutcomeNotified
}

func (c *Controller) advance(resp homework.Response) {
	if !resp.HasCurrentDate {
		return
	}
	if resp.CurrentDate < c.checkpoint {
		c.log.Warn("current_date is behind the checkpoint; keeping checkpoint",
			logx.Int64("current_date", resp.CurrentDate), logx.Int64("checkpoint", c.checkpoint))
		return
	}
	c.checkpoint = resp.CurrentDate
}

func (c *Controller) failed(err error) Result {
	out := OutcomeError
	if Classify(err) == ClassTransient {
		out = OutcomeTransient
	}
	return Result{Outcome: out, Checkpoint: c.checkpoint}
}
