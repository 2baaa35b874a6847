package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultMaxEntries = 5000
	DefaultTTL        = 10 * time.Minute
)

type storeEntry struct {
	key        string
	timestamps []int64
	expiresAt  time.Time
}

// Store is a bounded in-memory map of per-client timestamp sequences with
// least-recently-used eviction and a per-entry idle TTL. It is an
// approximation by design: under high client cardinality, eviction can reset
// a client's window early. Entries past their idle TTL are treated as absent
// on lookup, so correctness never depends on the sweep in PruneExpired.
//
// The store is process-local. Instances behind a load balancer keep
// independent quotas.
type Store struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]*list.Element
	lru        *list.List
}

// NewStore creates a store holding at most maxEntries keys, each expiring
// after ttl of inactivity. Non-positive arguments fall back to the defaults.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
	}
}

// Get returns the timestamp sequence stored under key. The returned slice is
// a copy the caller owns. An idle-expired entry counts as absent and is
// dropped. A hit refreshes the entry's idle TTL and recency.
func (s *Store) Get(key string) ([]int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*storeEntry)
	if time.Now().After(entry.expiresAt) {
		s.removeElement(elem)
		return nil, false
	}

	s.lru.MoveToFront(elem)
	entry.expiresAt = time.Now().Add(s.ttl)

	out := make([]int64, len(entry.timestamps))
	copy(out, entry.timestamps)
	return out, true
}

// Peek returns a copy of the timestamps under key without refreshing the
// entry's TTL or recency. Expired entries count as absent but are left for
// the janitor.
func (s *Store) Peek(key string) ([]int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*storeEntry)
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	out := make([]int64, len(entry.timestamps))
	copy(out, entry.timestamps)
	return out, true
}

// Put stores timestamps under key, taking ownership of the slice. Inserting
// beyond capacity evicts the least-recently-used key.
func (s *Store) Put(key string, timestamps []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*storeEntry)
		entry.timestamps = timestamps
		entry.expiresAt = time.Now().Add(s.ttl)
		s.lru.MoveToFront(elem)
		return
	}

	if s.lru.Len() >= s.maxEntries {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}

	elem := s.lru.PushFront(&storeEntry{
		key:        key,
		timestamps: timestamps,
		expiresAt:  time.Now().Add(s.ttl),
	})
	s.entries[key] = elem
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.removeElement(elem)
	}
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*list.Element)
	s.lru.Init()
}

// Len reports the number of tracked keys, expired entries included until
// they are looked up or pruned.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// PruneExpired removes idle-expired entries and reports how many were
// dropped. Intended for a periodic janitor; lookups already treat expired
// entries as absent.
func (s *Store) PruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	pruned := 0
	for elem := s.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if entry := elem.Value.(*storeEntry); now.After(entry.expiresAt) {
			s.removeElement(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

func (s *Store) removeElement(elem *list.Element) {
	entry := elem.Value.(*storeEntry)
	delete(s.entries, entry.key)
	s.lru.Remove(elem)
}
