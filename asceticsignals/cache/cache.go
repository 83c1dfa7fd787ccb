package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/logger"
)

// Cache is a named, typed view over a Store. All of its keys live under the
// normalised name as a namespace.
type Cache struct {
	name   string
	store  Store
	logger *slog.Logger
}

type Option func(*Cache)

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(name string, store Store, opts ...Option) *Cache {
	c := &Cache{
		name:   NormalizeKey(name),
		store:  store,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("cache"), logger.Namespace(c.name))
	return c
}

func (c *Cache) Name() string {
	return c.name
}

// Set stores value under key. A ttl of zero or less keeps the entry until it
// is removed or evicted.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	storeKey, err := c.key(key)
	if err != nil {
		return err
	}
	entry, err := encode(value)
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, storeKey, entry, ttl); err != nil {
		c.fail(ctx, "set", key, err)
		return err
	}
	return nil
}

// Get returns the stored value. Text comes back as float64, bool or string,
// JSON as the generic decoding of encoding/json and anything else as bytes.
func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	entry, ok, err := c.fetch(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	value, err := decode(entry)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// GetInto decodes a JSON entry into target.
func (c *Cache) GetInto(ctx context.Context, key string, target any) (bool, error) {
	entry, ok, err := c.fetch(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if entry.ContentType != ContentTypeJSON {
		return false, errors.WithMessagef(ErrNotJSON, "content type %q", entry.ContentType)
	}
	if err := json.Unmarshal(entry.Body, target); err != nil {
		return false, errors.Wrap(err, "cache: unable to decode json entry")
	}
	return true, nil
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	storeKey, err := c.key(key)
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, storeKey); err != nil {
		c.fail(ctx, "remove", key, err)
		return err
	}
	return nil
}

// Destroy drops every entry of the cache's namespace.
func (c *Cache) Destroy(ctx context.Context) error {
	if err := c.store.Drop(ctx, c.name); err != nil {
		c.logger.ErrorContext(ctx, "cache operation failed", logger.Operation("destroy"), logger.Error(err))
		return err
	}
	return nil
}

func (c *Cache) fetch(ctx context.Context, key string) (Entry, bool, error) {
	storeKey, err := c.key(key)
	if err != nil {
		return Entry{}, false, err
	}
	entry, ok, err := c.store.Fetch(ctx, storeKey)
	if err != nil {
		c.fail(ctx, "get", key, err)
		return Entry{}, false, err
	}
	return entry, ok, nil
}

func (c *Cache) key(key string) (string, error) {
	normalized := NormalizeKey(key)
	if normalized == "" {
		return "", errors.WithMessagef(ErrEmptyKey, "%q", key)
	}
	return NamespacedKey(c.name, normalized), nil
}

func (c *Cache) fail(ctx context.Context, operation, key string, err error) {
	c.logger.ErrorContext(ctx, "cache operation failed",
		logger.Operation(operation), logger.Key(key), logger.Error(err))
}
