package poller

import (
	"context"
	"sync"
	"time"

	"homeworkbot/internal/storage"
)

// scriptFetcher replays one step per call; the last step repeats.
type scriptFetcher struct {
	steps []fetchStep
	calls []int64 // from_date of each call
}

type fetchStep struct {
	v   any
	err error
}

func (f *scriptFetcher) Fetch(ctx context.Context, fromDate int64) (any, error) {
	f.calls = append(f.calls, fromDate)
	i := len(f.calls) - 1
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	return f.steps[i].v, f.steps[i].err
}

type fakeNotifier struct {
	sent []string
	fail bool
}

func (n *fakeNotifier) Send(ctx context.Context, text string) bool {
	n.sent = append(n.sent, text)
	return !n.fail
}

// fakeClock advances instantly on After and records every wait.
type fakeClock struct {
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

type memJournal struct {
	mu      sync.Mutex
	records []storage.Record
}

func (j *memJournal) Append(ctx context.Context, r storage.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
	return nil
}

func (j *memJournal) Recent(ctx context.Context, n int) ([]storage.Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n > len(j.records) {
		n = len(j.records)
	}
	return append([]storage.Record(nil), j.records[len(j.records)-n:]...), nil
}

func (j *memJournal) Close() error { return nil }

type fakeLifecycle struct {
	ready, watchdog, stopping int

	interval time.Duration
	// ping times are recorded when clock is set
	clock    *fakeClock
	pings    []time.Time
	statuses []string
}

func (l *fakeLifecycle) Ready() error    { l.ready++; return nil }
func (l *fakeLifecycle) Stopping() error { l.stopping++; return nil }

func (l *fakeLifecycle) Watchdog() error {
	l.watchdog++
	if l.clock != nil {
		l.pings = append(l.pings, l.clock.Now())
	}
	return nil
}

func (l *fakeLifecycle) Status(s string) error {
	l.statuses = append(l.statuses, s)
	return nil
}

func (l *fakeLifecycle) WatchdogInterval() time.Duration { return l.interval }

func payload(date int64, items ...map[string]any) map[string]any {
	list := make([]any, 0, len(items))
	for _, it := range items {
		list = append(list, it)
	}
	return map[string]any{"homeworks": list, "current_date": float64(date)}
}

func hw(name, status string) map[string]any {
	return map[string]any{"homework_name": name, "status": status}
}
