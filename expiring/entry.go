// Package expiring implements the L7 expiring keyed set (spec §4.7): the
// shared TTL backing store behind time-to-live dictionaries and sets, with
// timer-driven eviction and refresh-on-access.
package expiring

import "time"

// entry is the internal record held by both Set's map and its auxiliary
// expiration-ordered list. Deleting a key marks removed so the list can
// lazy-prune it on the next eviction pass instead of splicing the slice
// immediately.
type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
	ttl     time.Duration
	removed bool

	lastRefresh time.Time
}

// Entry is the read-only snapshot handed to callers: Get's return value and
// the payload of an entries-expired notification.
type Entry[K comparable, V any] struct {
	Key     K
	Value   V
	Expires time.Time
	TTL     time.Duration
}

func (e *entry[K, V]) snapshot() Entry[K, V] {
	return Entry[K, V]{Key: e.key, Value: e.value, Expires: e.expires, TTL: e.ttl}
}
