package expiring

import (
	"sync"
	"time"

	"github.com/mindtouch/dream-async/clock"
)

// Set is the shared TTL backing store of spec §4.7: a map from key to
// entry, paired with an auxiliary list sorted lazily by expiration, and a
// single clock.Timer armed for the earliest live expiration.
type Set[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	order   []*entry[K, V]

	factory *clock.Factory
	env     clock.EnvBinder
	timer   *clock.Timer

	autoRefresh     bool
	refreshCoalesce time.Duration

	changed changeObservers
	expired expiredObservers[K, V]
}

// Option configures a new Set.
type Option[K comparable, V any] func(*Set[K, V])

// WithAutoRefresh turns on Refresh coalescing: repeated Refresh calls on
// the same key within coalesce of each other collapse to a single
// expiration extension, avoiding refresh churn under read bursts
// (spec §4.7).
func WithAutoRefresh[K comparable, V any](coalesce time.Duration) Option[K, V] {
	return func(s *Set[K, V]) {
		s.autoRefresh = true
		s.refreshCoalesce = coalesce
	}
}

// NewSet constructs an empty Set. factory arms the eviction timer against
// env, the same clock.EnvBinder every timer handler in this module runs
// through.
func NewSet[K comparable, V any](factory *clock.Factory, env clock.EnvBinder, opts ...Option[K, V]) *Set[K, V] {
	s := &Set[K, V]{
		entries:         make(map[K]*entry[K, V]),
		factory:         factory,
		env:             env,
		refreshCoalesce: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetExpiration inserts key if absent (when createIfMissing is true) or
// updates its value, expiration, and TTL. existed reports whether a prior
// entry was updated, in which case prior is its old value.
func (s *Set[K, V]) SetExpiration(key K, value V, when time.Time, ttl time.Duration, createIfMissing bool) (prior V, existed bool) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		if !createIfMissing {
			s.mu.Unlock()
			return prior, false
		}
		e = &entry[K, V]{key: key}
		s.entries[key] = e
		s.order = append(s.order, e)
	} else {
		prior, existed = e.value, true
	}
	e.value = value
	e.expires = when
	e.ttl = ttl
	e.removed = false
	earliest := s.earliestLocked()
	s.mu.Unlock()

	s.rearm(earliest)
	s.changed.fire()
	return prior, existed
}

// Get returns the live value stored for key, if any.
func (s *Set[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.removed {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Refresh extends key's expiration by its stored TTL. When WithAutoRefresh
// is set, calls within refreshCoalesce of the last applied refresh are
// no-ops (spec §4.7 "coalesced to at most one update per 500ms per entry").
// It reports false if key is absent or already deleted.
func (s *Set[K, V]) Refresh(key K) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e.removed {
		s.mu.Unlock()
		return false
	}
	now := time.Now()
	if s.autoRefresh && !e.lastRefresh.IsZero() && now.Sub(e.lastRefresh) < s.refreshCoalesce {
		s.mu.Unlock()
		return true
	}
	e.expires = now.Add(e.ttl)
	e.lastRefresh = now
	earliest := s.earliestLocked()
	s.mu.Unlock()

	s.rearm(earliest)
	s.changed.fire()
	return true
}

// Delete removes key from the map and marks its entry Removed so the
// auxiliary list lazy-prunes it on the next eviction pass, instead of
// splicing the slice immediately.
func (s *Set[K, V]) Delete(key K) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, key)
	e.removed = true
	earliest := s.earliestLocked()
	s.mu.Unlock()

	s.rearm(earliest)
	s.changed.fire()
	return true
}

// Clear drops every entry and rearms the timer to infinity (cancels it).
func (s *Set[K, V]) Clear() {
	s.mu.Lock()
	s.entries = make(map[K]*entry[K, V])
	s.order = nil
	s.mu.Unlock()

	s.rearm(time.Time{})
	s.changed.fire()
}

// Count returns the number of live entries at the instant of the call.
func (s *Set[K, V]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CollectionChanged registers fn to be called after any mutation
// (SetExpiration, Refresh, Delete, Clear, or an eviction pass that removed
// at least one entry). The returned func unsubscribes it.
func (s *Set[K, V]) CollectionChanged(fn func()) (unsubscribe func()) {
	return s.changed.subscribe(fn)
}

// EntriesExpired registers fn to be called once per eviction pass with the
// batch of entries it evicted. The returned func unsubscribes it.
func (s *Set[K, V]) EntriesExpired(fn func([]Entry[K, V])) (unsubscribe func()) {
	return s.expired.subscribe(fn)
}

// earliestLocked returns the earliest live (non-removed) expiration time in
// the auxiliary list, or the zero time if there are none. Callers must hold
// s.mu.
func (s *Set[K, V]) earliestLocked() time.Time {
	var earliest time.Time
	for _, e := range s.order {
		if e.removed {
			continue
		}
		if earliest.IsZero() || e.expires.Before(earliest) {
			earliest = e.expires
		}
	}
	return earliest
}

// rearm (re)arms the eviction timer for fireTime, or cancels it if fireTime
// is the zero time (no live entries left).
func (s *Set[K, V]) rearm(fireTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fireTime.IsZero() {
		if s.timer != nil {
			s.timer.Cancel()
			s.timer = nil
		}
		return
	}
	if s.timer == nil || s.timer.Fired() {
		s.timer = s.factory.New(fireTime, s.onTimerFire, nil, s.env)
		return
	}
	if err := s.timer.Change(fireTime); err != nil {
		s.timer = s.factory.New(fireTime, s.onTimerFire, nil, s.env)
	}
}
