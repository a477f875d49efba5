package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements an in-memory fixed window store.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type window struct {
	count int
	start time.Time
	size  time.Duration
}

// expired reports whether the window has fully elapsed at now.
func (w *window) expired(now time.Time) bool {
	return now.Sub(w.start) >= w.size
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the cleanup interval for expired windows.
// Set to 0 to disable automatic cleanup; expired windows are still reset
// lazily on their next use.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval >= 0 {
			s.cleanupInterval = interval
		}
	}
}

// NewMemoryStore creates a new in-memory store with automatic cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cleanupInterval > 0 {
		go s.cleanupLoop()
	}

	return s
}

// Take implements Store.
func (s *MemoryStore) Take(ctx context.Context, key string, limit int, size time.Duration, now time.Time) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.windows[key]
	if !exists {
		w = &window{start: now, size: size}
		s.windows[key] = w
	}

	// Fixed window: a rollover zeroes the count and rebases the start.
	w.size = size
	if w.expired(now) {
		w.count = 0
		w.start = now
	}

	allowed := w.count < limit
	if allowed {
		w.count++
	}

	return Window{Count: w.count, Start: w.start, Allowed: allowed}, nil
}

// Peek implements Store.
func (s *MemoryStore) Peek(ctx context.Context, key string, size time.Duration, now time.Time) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.windows[key]
	if !exists || now.Sub(w.start) >= size {
		return Window{Start: now}, nil
	}

	return Window{Count: w.count, Start: w.start}, nil
}

// Delete removes the given key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}

// Len returns the number of tracked windows, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// cleanupLoop runs periodically to remove expired windows.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RemoveExpired(time.Now())
		case <-s.stopCleanup:
			return
		}
	}
}

// RemoveExpired drops every window that has fully elapsed at now and
// returns how many were removed.
func (s *MemoryStore) RemoveExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if w.expired(now) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}
