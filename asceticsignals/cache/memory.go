package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

const DefaultMemoryCapacity = 1024

type memoryEntry struct {
	key       string
	entry     Entry
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a bounded LRU Store with per-entry expiry. It is safe for
// concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
	now      func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithCapacity sets the number of entries kept before the least recently
// used one is evicted. Non-positive values are ignored.
func WithCapacity(capacity int) MemoryOption {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		capacity: DefaultMemoryCapacity,
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = make(map[string]*list.Element, s.capacity)
	return s
}

func (s *MemoryStore) Put(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &memoryEntry{
		key:   key,
		entry: Entry{ContentType: entry.ContentType, Body: append([]byte(nil), entry.Body...)},
	}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}

	if elem, ok := s.items[key]; ok {
		elem.Value = item
		s.order.MoveToBack(elem)
		return nil
	}
	s.items[key] = s.order.PushBack(item)
	if len(s.items) > s.capacity {
		s.removeElement(s.order.Front())
	}
	return nil
}

func (s *MemoryStore) Fetch(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return Entry{}, false, nil
	}
	item := elem.Value.(*memoryEntry)
	if item.expired(s.now()) {
		s.removeElement(elem)
		return Entry{}, false, nil
	}
	s.order.MoveToBack(elem)
	return Entry{ContentType: item.entry.ContentType, Body: append([]byte(nil), item.entry.Body...)}, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.removeElement(elem)
	}
	return nil
}

func (s *MemoryStore) Drop(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := NamespacePrefix(namespace)
	for key, elem := range s.items {
		if strings.HasPrefix(key, prefix) {
			s.removeElement(elem)
		}
	}
	return nil
}

// Len counts stored entries, expired ones included until they are touched.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	s.order.Remove(elem)
	delete(s.items, elem.Value.(*memoryEntry).key)
}
