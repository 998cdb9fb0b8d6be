// Package jobs is the in-process stand-in for the external job-result
// cache: records live until TTL eviction, mutation happens only under
// the store lock. The orchestrator treats this as a collaborator it
// does not own; swapping in a remote cache changes nothing above it.
package jobs

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound reports a missing or already-evicted record.
var ErrNotFound = errors.New("job not found")

// DefaultTTL keeps finished results around for an hour.
const DefaultTTL = time.Hour

// Store holds job records with TTL eviction. V is typically a pointer
// type; every mutation must go through Update so the single-writer
// discipline holds.
type Store[V any] struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*entry[V]

	done      chan struct{}
	closeOnce sync.Once
	swept     sync.WaitGroup
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// New creates a store. ttl <= 0 falls back to DefaultTTL; sweepEvery <=
// 0 disables the background sweeper (expired records are still dropped
// lazily on access).
func New[V any](ttl, sweepEvery time.Duration) *Store[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store[V]{
		ttl:     ttl,
		entries: make(map[string]*entry[V]),
		done:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		s.swept.Add(1)
		go s.sweep(sweepEvery)
	}
	return s
}

// Put stores a record under id, resetting its TTL.
func (s *Store[V]) Put(id string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry[V]{value: v, expires: time.Now().Add(s.ttl)}
}

// Get returns the record for id. The value is shared, not copied;
// callers that need a stable view use View with their own clone.
func (s *Store[V]) Get(id string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Update runs fn on the record under the store lock and refreshes its
// TTL. This is the only sanctioned mutation path: concurrent progress
// updates and cancellation serialize here instead of racing.
func (s *Store[V]) Update(id string, fn func(V) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return ErrNotFound
	}
	if err := fn(e.value); err != nil {
		return err
	}
	e.expires = time.Now().Add(s.ttl)
	return nil
}

// View runs fn on the record under the store lock without touching its
// TTL. fn must not mutate the value.
func (s *Store[V]) View(id string, fn func(V)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return false
	}
	fn(e.value)
	return true
}

// Len counts live records.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := time.Now()
	for _, e := range s.entries {
		if e.expires.After(now) {
			n++
		}
	}
	return n
}

// Close stops the sweeper. Records stay readable until eviction.
func (s *Store[V]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.swept.Wait()
}

// live returns the entry for id, dropping it if expired. Caller holds mu.
func (s *Store[V]) live(id string) (*entry[V], bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !e.expires.After(time.Now()) {
		delete(s.entries, id)
		return nil, false
	}
	return e, true
}

func (s *Store[V]) sweep(every time.Duration) {
	defer s.swept.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, e := range s.entries {
				if !e.expires.After(now) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
