package expiring

import (
	"sort"
	"time"
)

// onTimerFire is the eviction procedure of spec §4.7, adapted from the
// teacher's reorderer "cursor plus contiguous-flush" coordinator (redirected
// from result-ordering to expiration-ordering): sort the auxiliary list
// (cheap — it is already mostly sorted), walk from the head evicting
// entries that are removed or expired, stop at the first still-live entry,
// and rearm for it.
func (s *Set[K, V]) onTimerFire(now time.Time) {
	s.mu.Lock()
	sort.Slice(s.order, func(i, j int) bool {
		return s.order[i].expires.Before(s.order[j].expires)
	})

	var batch []Entry[K, V]
	cursor := 0
	for cursor < len(s.order) {
		e := s.order[cursor]
		if e.removed {
			cursor++
			continue
		}
		if !e.expires.After(now) {
			delete(s.entries, e.key)
			batch = append(batch, e.snapshot())
			cursor++
			continue
		}
		break
	}
	s.order = s.order[cursor:]
	s.timer = nil
	earliest := s.earliestLocked()
	s.mu.Unlock()

	s.rearm(earliest)
	if len(batch) > 0 {
		s.expired.fire(batch)
		s.changed.fire()
	}
}
