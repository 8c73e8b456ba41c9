// Package cache keeps the last successfully fetched usage in memory so a
// failed refresh can still show the previous numbers. Nothing is written to
// disk; a restart starts empty.
package cache

import (
	"sync"
	"time"

	"github.com/tnunamak/copilotmeter/internal/display"
)

type Entry struct {
	Usage     *display.Usage `json:"usage"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// IsValid reports whether the entry is younger than ttl. A ttl <= 0 never expires.
func (e *Entry) IsValid(now time.Time, ttl time.Duration) bool {
	return ttl <= 0 || now.Sub(e.FetchedAt) < ttl
}

// Store holds at most one entry and is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	entry *Entry
	ttl   time.Duration
}

// New creates a store whose entries expire after ttl (0 keeps them forever).
func New(ttl time.Duration) *Store {
	return &Store{ttl: ttl}
}

// Read returns the stored entry if there is one and it has not expired.
func (s *Store) Read(now time.Time) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil || !s.entry.IsValid(now, s.ttl) {
		return nil, false
	}
	e := *s.entry
	return &e, true
}

// Write replaces the stored entry.
func (s *Store) Write(usage *display.Usage, fetchedAt time.Time) {
	if usage == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &Entry{Usage: usage, FetchedAt: fetchedAt}
}

// Clear drops the stored entry, e.g. after the token was rejected.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
}
