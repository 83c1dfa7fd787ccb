package freearray

import (
	"iter"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/uniqueid"
)

type slot[I any] struct {
	key     string
	item    I
	prev    *slot[I]
	next    *slot[I]
	removed bool
}

// FreeArray holds items under keys it generates itself. Keys are never
// reused while the registry is alive, and removing one entry never changes
// the identity of another.
//
// Entries are kept in insertion order in an intrusive list. A removed slot is
// unlinked from its neighbours but keeps its own next pointer, so an iterator
// parked on it can still walk forward into the live part of the list.
//
// FreeArray is not safe for concurrent use.
type FreeArray[I any] struct {
	items     map[string]*slot[I]
	head      *slot[I]
	tail      *slot[I]
	generate  uniqueid.Generator
	destroyed bool
}

type config struct {
	generate uniqueid.Generator
}

type Option func(*config)

// WithGenerator sets the id primitive used for new keys.
// The generator must never return a key that is still live.
func WithGenerator(generate uniqueid.Generator) Option {
	return func(c *config) {
		if generate != nil {
			c.generate = generate
		}
	}
}

// New returns an empty registry keyed by uniqueid.Default unless
// WithGenerator says otherwise.
func New[I any](opts ...Option) *FreeArray[I] {
	c := config{generate: uniqueid.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return &FreeArray[I]{
		items:    make(map[string]*slot[I]),
		generate: c.generate,
	}
}

// Push stores item under a fresh key and returns the key.
func (a *FreeArray[I]) Push(item I) string {
	s := &slot[I]{key: a.generate(), item: item, prev: a.tail}
	if a.tail == nil {
		a.head = s
	} else {
		a.tail.next = s
	}
	a.tail = s
	a.items[s.key] = s
	return s.key
}

// Get reports false for unknown and removed keys.
func (a *FreeArray[I]) Get(key string) (I, bool) {
	if s, ok := a.items[key]; ok {
		return s.item, true
	}
	var zero I
	return zero, false
}

// Remove deletes the entry stored under key and returns it.
// Unknown keys report false; removing twice is harmless.
func (a *FreeArray[I]) Remove(key string) (I, bool) {
	s, ok := a.items[key]
	if !ok {
		var zero I
		return zero, false
	}
	delete(a.items, key)

	if s.prev == nil {
		a.head = s.next
	} else {
		s.prev.next = s.next
	}
	if s.next == nil {
		a.tail = s.prev
	} else {
		s.next.prev = s.prev
	}

	item := s.item
	var zero I
	s.item = zero
	s.prev = nil
	s.removed = true
	return item, true
}

// All walks the live entries in insertion order.
//
// The registry may be mutated while the walk is in progress: entries removed
// before the cursor reaches them are skipped and entries already yielded are
// unaffected. Entries pushed during the walk are normally reached as well,
// but callers must not rely on it.
func (a *FreeArray[I]) All() iter.Seq2[string, I] {
	return func(yield func(string, I) bool) {
		for s := a.head; s != nil; s = s.next {
			if s.removed {
				continue
			}
			if !yield(s.key, s.item) {
				return
			}
		}
	}
}

// Keys returns the live keys in insertion order as a detached slice.
func (a *FreeArray[I]) Keys() []string {
	keys := make([]string, 0, len(a.items))
	for key := range a.All() {
		keys = append(keys, key)
	}
	return keys
}

// Len counts live entries.
func (a *FreeArray[I]) Len() int {
	return len(a.items)
}

func (a *FreeArray[I]) IsDestroyed() bool {
	return a.destroyed
}

// Destroy marks the registry as destroyed. It does not reject later calls;
// the owner decides what a destroyed registry means.
func (a *FreeArray[I]) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
}
