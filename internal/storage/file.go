package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "homeworkbot/pkg/logx"
)

// fileStore appends records as JSON Lines.
//
// When Retain is set the file is compacted every compactEvery appends,
// keeping only the newest Retain records.
type fileStore struct {
	log  logx.Logger
	path string

	retain       int
	compactEvery int

	mu      sync.Mutex
	f       *os.File
	appends int
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.Debug("journal opened", logx.String("path", path))
	return &fileStore{log: log, path: path, f: f, retain: cfg.Retain, compactEvery: 100}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *fileStore) Append(ctx context.Context, r Record) error {
	_ = ctx
	if r.At.IsZero() {
		r.At = time.Now()
	}
	r.At = r.At.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return errors.New("journal file closed")
	}
	if err := json.NewEncoder(s.f).Encode(r); err != nil {
		return err
	}
	s.appends++
	if s.retain > 0 && s.appends%s.compactEvery == 0 {
		if err := s.compactLocked(); err != nil {
			s.log.Debug("journal compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) Recent(ctx context.Context, n int) ([]Record, error) {
	_ = ctx
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return readTail(s.path, n)
}

// readTail returns the last n decodable records of path.
func readTail(path string, n int) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tailRecords(f, n)
}

func tailRecords(r io.Reader, n int) ([]Record, error) {
	ring := make([]Record, 0, n)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, rec)
	}
	return ring, sc.Err()
}

func (s *fileStore) compactLocked() error {
	keep, err := readTail(s.path, s.retain)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, r := range keep {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	nf, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	_ = s.f.Close()
	s.f = nf
	return nil
}
