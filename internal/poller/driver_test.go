package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"homeworkbot/internal/homework"
	logx "homeworkbot/pkg/logx"
)

const retry = 10 * time.Minute

func TestDriverSleepsFixedIntervalAfterEveryCycle(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	f := &scriptFetcher{steps: []fetchStep{
		{v: payload(1)},
		{err: errors.New("boom")},
		{v: payload(2)},
	}}
	c := NewController(f, &fakeNotifier{}, 0, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(), WithClock(clk))

	if err := d.RunN(context.Background(), 3); err != nil {
		t.Fatalf("RunN: %v", err)
	}
	if len(f.calls) != 3 {
		t.Fatalf("cycles = %d, want 3", len(f.calls))
	}
	if len(clk.waits) != 3 {
		t.Fatalf("sleeps = %d, want 3", len(clk.waits))
	}
	for i, w := range clk.waits {
		if w != retry {
			t.Fatalf("sleep %d = %v, want %v", i, w, retry)
		}
	}
}

func TestDriverReportsErrorsOnceAndSkipsTransport(t *testing.T) {
	t.Parallel()
	remote := &homework.Error{Kind: homework.KindRemoteStatus, Op: "fetch", Msg: "endpoint returned 503", StatusCode: 503}
	transport := &homework.Error{Kind: homework.KindTransport, Op: "fetch", Msg: "request failed"}
	f := &scriptFetcher{steps: []fetchStep{
		{err: transport},
		{err: remote},
		{err: remote},
		{err: transport},
	}}
	n := &fakeNotifier{}
	c := NewController(f, n, 0, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(), WithClock(newFakeClock()))

	_ = d.RunN(context.Background(), 4)

	if len(n.sent) != 1 {
		t.Fatalf("sends = %d, want 1: %q", len(n.sent), n.sent)
	}
	if n.sent[0] != "Program failure: "+remote.Error() {
		t.Fatalf("report = %q", n.sent[0])
	}
	if c.State().LastMessage != n.sent[0] {
		t.Fatalf("last message = %q", c.State().LastMessage)
	}
}

func TestDriverFailedReportIsRetried(t *testing.T) {
	t.Parallel()
	remote := &homework.Error{Kind: homework.KindShape, Op: "check_response", Msg: "response is not an object"}
	f := &scriptFetcher{steps: []fetchStep{{err: remote}}}
	n := &fakeNotifier{fail: true}
	c := NewController(f, n, 0, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(), WithClock(newFakeClock()))

	_ = d.RunN(context.Background(), 2)
	if len(n.sent) != 2 {
		t.Fatalf("report attempts = %d, want 2", len(n.sent))
	}
	if c.State().LastMessage != "" {
		t.Fatalf("last message = %q", c.State().LastMessage)
	}
}

func TestDriverHTTP503Scenario(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	var lastFrom atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastFrom.Store(r.URL.Query().Get("from_date"))
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := homework.NewClient(srv.URL, "token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	clk := newFakeClock()
	start := clk.Now().Unix()
	n := &fakeNotifier{}
	j := &memJournal{}
	c := NewController(client, n, start, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(), WithClock(clk), WithJournal(j))

	_ = d.RunN(context.Background(), 2)

	if hits.Load() != 2 {
		t.Fatalf("requests = %d, want 2", hits.Load())
	}
	if got := lastFrom.Load().(string); got != "1714564800" {
		t.Fatalf("second from_date = %s, want unchanged checkpoint", got)
	}
	if c.State().Checkpoint != start {
		t.Fatalf("checkpoint moved: %d", c.State().Checkpoint)
	}
	if len(n.sent) != 1 || !strings.HasPrefix(n.sent[0], "Program failure: ") || !strings.Contains(n.sent[0], "503") {
		t.Fatalf("notifications = %q", n.sent)
	}
	if len(clk.waits) != 2 || clk.waits[0] != retry {
		t.Fatalf("waits = %v", clk.waits)
	}
	if len(j.records) != 2 || j.records[0].Outcome != string(OutcomeError) || j.records[0].Error == "" {
		t.Fatalf("journal = %+v", j.records)
	}
	if j.records[0].ID == "" || j.records[0].ID == j.records[1].ID {
		t.Fatalf("cycle ids not unique: %q %q", j.records[0].ID, j.records[1].ID)
	}
}

func TestDriverStartNoticeAndLifecycle(t *testing.T) {
	t.Parallel()
	n := &fakeNotifier{}
	lc := &fakeLifecycle{}
	c := NewController(&scriptFetcher{steps: []fetchStep{{v: payload(5)}}}, n, 0, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(),
		WithClock(newFakeClock()), WithLifecycle(lc), WithStartNotice(true))

	_ = d.RunN(context.Background(), 2)

	if len(n.sent) != 1 || n.sent[0] != StartText {
		t.Fatalf("sent = %q", n.sent)
	}
	if lc.ready != 1 || lc.watchdog != 2 || lc.stopping != 1 {
		t.Fatalf("lifecycle = %+v", *lc)
	}
	if len(lc.statuses) != 2 || !strings.HasPrefix(lc.statuses[0], "last cycle idle at ") {
		t.Fatalf("statuses = %q", lc.statuses)
	}
}

func TestDriverPingsWatchdogDuringRetryDelay(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	lc := &fakeLifecycle{interval: 30 * time.Second, clock: clk}
	c := NewController(&scriptFetcher{steps: []fetchStep{{v: payload(1)}}}, &fakeNotifier{}, 0, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(), WithClock(clk), WithLifecycle(lc))

	if err := d.RunN(context.Background(), 3); err != nil {
		t.Fatalf("RunN: %v", err)
	}
	if len(lc.pings) < 2 {
		t.Fatalf("pings = %d", len(lc.pings))
	}
	for i := 1; i < len(lc.pings); i++ {
		if gap := lc.pings[i].Sub(lc.pings[i-1]); gap > lc.interval/2 {
			t.Fatalf("watchdog gap %d = %v, want <= %v", i, gap, lc.interval/2)
		}
	}
	var total time.Duration
	for _, w := range clk.waits {
		total += w
	}
	if total != 3*retry {
		t.Fatalf("total sleep = %v, want %v", total, 3*retry)
	}
}

func TestDriverIntervalIgnoresSubSecondOffset(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	clk.now = clk.now.Add(900 * time.Millisecond)
	c := NewController(&scriptFetcher{steps: []fetchStep{{v: payload(1)}}}, &fakeNotifier{}, 0, logx.Nop())
	d := NewDriver(c, cron.Every(retry), logx.Nop(), WithClock(clk))

	_ = d.RunN(context.Background(), 2)

	if len(clk.waits) != 2 || clk.waits[0] != retry || clk.waits[1] != retry {
		t.Fatalf("waits = %v, want [%v %v]", clk.waits, retry, retry)
	}
}

func TestDriverRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	f := &scriptFetcher{steps: []fetchStep{{v: payload(1)}}}
	c := NewController(f, &fakeNotifier{}, 0, logx.Nop())
	// Real clock: the first sleep blocks until cancel.
	d := NewDriver(c, cron.Every(time.Hour), logx.Nop())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
