package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"homeworkbot/internal/config"
	"homeworkbot/internal/storage"
	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
	to    []kit.ChatTarget
}

func (s *recordingSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	s.to = append(s.to, to)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(s.texts)}, nil
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

type nopLifecycle struct{}

func (nopLifecycle) Ready() error                    { return nil }
func (nopLifecycle) Watchdog() error                 { return nil }
func (nopLifecycle) Stopping() error                 { return nil }
func (nopLifecycle) Status(string) error             { return nil }
func (nopLifecycle) WatchdogInterval() time.Duration { return 0 }

func testConfig(endpoint, journal string) *Config {
	cfg := config.Default()
	cfg.Practicum.Token = "practicum"
	cfg.Practicum.Endpoint = endpoint
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.ChatID = "-100500"
	cfg.Poller.RetryPeriod = "1m"
	cfg.Storage = &config.StorageConfig{Driver: "file", Path: journal}
	return cfg
}

func TestAppRunsCyclesEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks":[{"homework_name":"hw1","status":"approved"}],"current_date":1714564900}`))
	}))
	defer srv.Close()

	journal := filepath.Join(t.TempDir(), "journal.jsonl")
	sender := &recordingSender{}
	clk := &stepClock{now: time.Unix(1714564800, 0)}
	a, err := New(testConfig(srv.URL, journal),
		WithSender(sender), WithClock(clk), WithLogger(logx.Nop()), WithLifecycle(nopLifecycle{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := a.RunN(context.Background(), 3); err != nil {
		t.Fatalf("RunN: %v", err)
	}
	if len(sender.texts) != 1 {
		t.Fatalf("sends = %d, want 1 (dedup): %q", len(sender.texts), sender.texts)
	}
	if sender.to[0].ChatID != -100500 {
		t.Fatalf("target = %+v", sender.to[0])
	}
	if st := a.State(); st.Checkpoint != 1714564900 || st.LastMessage != sender.texts[0] {
		t.Fatalf("state = %+v", st)
	}
	if h := a.History(); len(h) != 1 {
		t.Fatalf("history = %+v", h)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err := storage.Open(storage.Config{Driver: "file", Path: journal}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer st.Close()
	recs, err := st.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []string{"notified", "duplicate", "duplicate"}
	if len(recs) != len(want) {
		t.Fatalf("journal records = %d, want %d", len(recs), len(want))
	}
	for i, w := range want {
		if recs[i].Outcome != w {
			t.Fatalf("record %d outcome = %s, want %s", i, recs[i].Outcome, w)
		}
	}
}

func TestNewRejectsBadChatID(t *testing.T) {
	cfg := testConfig("https://example.com/api/", filepath.Join(t.TempDir(), "j.jsonl"))
	cfg.Telegram.ChatID = "not-a-chat"
	if _, err := New(cfg, WithSender(&recordingSender{}), WithLogger(logx.Nop()), WithLifecycle(nopLifecycle{})); err == nil {
		t.Fatal("expected error for invalid chat id")
	}
}

func TestLoadConfigMissingIsErrMissing(t *testing.T) {
	for _, k := range []string{"PRACTICUM_TOKEN", "SECRET_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "CHAT_ID", "ENDPOINT"} {
		t.Setenv(k, "")
	}
	_, err := LoadConfig("", []string{}...)
	if !errors.Is(err, config.ErrMissing) {
		t.Fatalf("err = %v, want ErrMissing", err)
	}
}

func TestMapStorageConfig(t *testing.T) {
	cfg := config.Default()
	if _, enabled, err := mapStorageConfig(cfg); err != nil || enabled {
		t.Fatalf("nil storage: enabled=%v err=%v", enabled, err)
	}
	cfg.Storage = &config.StorageConfig{Driver: "SQLite", Path: "./data/j.db", Retain: 50}
	sc, enabled, err := mapStorageConfig(cfg)
	if err != nil || !enabled {
		t.Fatalf("sqlite: enabled=%v err=%v", enabled, err)
	}
	if sc.Driver != "sqlite" || sc.BusyTimeout != time.Second || sc.Retain != 50 {
		t.Fatalf("mapped = %+v", sc)
	}
	cfg.Storage = &config.StorageConfig{Driver: "file"}
	if _, _, err := mapStorageConfig(cfg); err == nil {
		t.Fatal("expected error for file driver without path")
	}
}
