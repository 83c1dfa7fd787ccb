package redis

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/cache"
)

const (
	fieldContentType = "ct"
	fieldBody        = "body"

	defaultScanBatchSize = 1000
)

// Store keeps every cache entry as a hash holding its content type and body.
type Store struct {
	client        redis.UniversalClient
	scanBatchSize int64
}

type Option func(*Store)

func WithScanBatchSize(size int64) Option {
	return func(s *Store) {
		if size > 0 {
			s.scanBatchSize = size
		}
	}
}

func NewStore(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, scanBatchSize: defaultScanBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Put(ctx context.Context, key string, entry cache.Entry, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldContentType, entry.ContentType, fieldBody, entry.Body)
		if ttl > 0 {
			pipe.PExpire(ctx, key, ttl)
		} else {
			pipe.Persist(ctx, key)
		}
		return nil
	})
	return errors.Wrapf(err, "redis: unable to put %q", key)
}

func (s *Store) Fetch(ctx context.Context, key string) (cache.Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return cache.Entry{}, false, errors.Wrapf(err, "redis: unable to fetch %q", key)
	}
	contentType, ok := fields[fieldContentType]
	if !ok {
		return cache.Entry{}, false, nil
	}
	return cache.Entry{ContentType: contentType, Body: []byte(fields[fieldBody])}, true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, key).Err(), "redis: unable to delete %q", key)
}

// Drop walks the namespace with SCAN so the server is never blocked by KEYS.
func (s *Store) Drop(ctx context.Context, namespace string) error {
	pattern := escapePattern(cache.NamespacePrefix(namespace)) + "*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, s.scanBatchSize).Result()
		if err != nil {
			return errors.Wrapf(err, "redis: unable to scan namespace %q", namespace)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrapf(err, "redis: unable to drop namespace %q", namespace)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

var patternEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapePattern(s string) string {
	return patternEscaper.Replace(s)
}
