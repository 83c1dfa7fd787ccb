package uniqueid

import (
	"crypto/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator returns a string that differs from every value it returned before.
// Nothing else about the format is promised.
type Generator func() string

// NewULIDGenerator produces lexicographically sortable ids.
// Monotonic entropy keeps ids distinct within the same millisecond.
func NewULIDGenerator() Generator {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	}
}

func NewUUIDGenerator() Generator {
	return func() string {
		return uuid.NewString()
	}
}

// Sequence returns prefix0, prefix1, ... Handy when tests need stable keys.
func Sequence(prefix string) Generator {
	var (
		mu   sync.Mutex
		next uint64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := prefix + strconv.FormatUint(next, 10)
		next++
		return id
	}
}

var (
	defaultOnce sync.Once
	defaultGen  Generator
)

// Default is the process-wide generator shared by registries that were not
// given one explicitly.
func Default() Generator {
	defaultOnce.Do(func() {
		defaultGen = NewULIDGenerator()
	})
	return defaultGen
}

// New returns an id from the default generator.
func New() string {
	return Default()()
}
