package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory. Used for tests and for
// single-process deployments that accept losing balances on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]string
	windows map[string]*window
	closed  bool
	now     func() time.Time

	// nextPrune is when expired rate-limit windows are next swept.
	nextPrune time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string]string),
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, ErrClosed
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.data[key] = value
	return nil
}

// SetClock overrides the time source used for rate-limit windows.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Allow(ctx context.Context, key string, limit int, period time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		s.pruneWindows(now, period)
		w = &window{resetAt: now.Add(period)}
		s.windows[key] = w
	}
	w.count++
	return w.count <= limit, nil
}

// pruneWindows drops expired windows at most once per period. Caller holds mu.
func (s *MemoryStore) pruneWindows(now time.Time, period time.Duration) {
	if now.Before(s.nextPrune) {
		return
	}
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
	s.nextPrune = now.Add(period)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
