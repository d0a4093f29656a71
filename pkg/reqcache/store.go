package reqcache

import (
	"container/list"
	"time"
)

// Entry is a cached response payload.
type Entry struct {
	Key       string
	Payload   string
	Status    int
	Meta      map[string]string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry must no longer be served at now.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store is an LRU cache of response payloads with per-entry TTLs.
// It is page-lifetime state owned by one engine and is not safe for
// concurrent use.
type Store struct {
	now        func() time.Time
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // LRU order (front = most recent)
}

// NewStore creates a store holding at most maxEntries entries. now supplies
// the current time; pass the scheduler's clock.
func NewStore(maxEntries int, now func() time.Time) *Store {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:        now,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the live entry for key, or nil. An expired entry is removed.
func (s *Store) Get(key string) *Entry {
	elem, ok := s.entries[key]
	if !ok {
		return nil
	}

	entry := elem.Value.(*Entry)
	if entry.Expired(s.now()) {
		s.order.Remove(elem)
		delete(s.entries, key)
		return nil
	}

	// Move to front (most recently used)
	s.order.MoveToFront(elem)
	return entry
}

// Set stores payload under key for ttl, replacing any previous entry. If the
// store is full, the least recently used entry is evicted.
func (s *Store) Set(key, payload string, ttl time.Duration, meta map[string]string) *Entry {
	now := s.now()
	entry := &Entry{
		Key:       key,
		Payload:   payload,
		Status:    200,
		Meta:      meta,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if elem, ok := s.entries[key]; ok {
		elem.Value = entry
		s.order.MoveToFront(elem)
		return entry
	}

	for s.order.Len() >= s.maxEntries {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*Entry).Key)
	}

	s.entries[key] = s.order.PushFront(entry)
	return entry
}

// Delete removes key.
func (s *Store) Delete(key string) {
	if elem, ok := s.entries[key]; ok {
		s.order.Remove(elem)
		delete(s.entries, key)
	}
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.entries = make(map[string]*list.Element)
	s.order = list.New()
}

// Len returns the number of stored entries, live or not yet evicted.
func (s *Store) Len() int {
	return len(s.entries)
}
