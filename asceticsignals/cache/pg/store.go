package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/cache"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/session"
)

const DefaultTable = "cache_entries"

// Store keeps cache entries in a single table. Expiry is computed and
// checked with the database clock.
type Store struct {
	pool  session.SessionPool
	table string
}

type Option func(*Store)

// WithTable accepts an optionally schema-qualified table name.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = pgx.Identifier(strings.Split(table, ".")).Sanitize()
		}
	}
}

func NewStore(pool session.SessionPool, opts ...Option) *Store {
	s := &Store{
		pool:  pool,
		table: pgx.Identifier{DefaultTable}.Sanitize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Put(ctx context.Context, key string, entry cache.Entry, ttl time.Duration) error {
	body := entry.Body
	if body == nil {
		body = []byte{}
	}
	err := s.pool.Session(ctx, func(sess session.Session) error {
		conn := sess.(session.DbSession).Connection()
		_, err := conn.Exec(
			fmt.Sprintf(`INSERT INTO %s (key, content_type, body, expires_at)
				VALUES ($1, $2, $3, CASE WHEN $4::bigint > 0 THEN now() + $4::bigint * interval '1 microsecond' END)
				ON CONFLICT (key) DO UPDATE SET
					content_type = EXCLUDED.content_type,
					body = EXCLUDED.body,
					expires_at = EXCLUDED.expires_at`, s.table),
			key, entry.ContentType, body, ttl.Microseconds(),
		)
		return err
	})
	return errors.Wrapf(err, "pg: unable to put %q", key)
}

func (s *Store) Fetch(ctx context.Context, key string) (cache.Entry, bool, error) {
	var entry cache.Entry
	found := false
	err := s.pool.Session(ctx, func(sess session.Session) error {
		conn := sess.(session.DbSession).Connection()
		err := conn.QueryRow(
			fmt.Sprintf("SELECT content_type, body FROM %s WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())", s.table),
			key,
		).Scan(&entry.ContentType, &entry.Body)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return cache.Entry{}, false, errors.Wrapf(err, "pg: unable to fetch %q", key)
	}
	if !found {
		return cache.Entry{}, false, nil
	}
	return entry, true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE key = $1", s.table), key)
	return errors.Wrapf(err, "pg: unable to delete %q", key)
}

func (s *Store) Drop(ctx context.Context, namespace string) error {
	prefix := cache.NamespacePrefix(namespace)
	err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE left(key, length($1)) = $1", s.table), prefix)
	return errors.Wrapf(err, "pg: unable to drop namespace %q", namespace)
}

// Purge deletes expired rows, which Fetch only hides.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	var affected int64
	err := s.pool.Session(ctx, func(sess session.Session) error {
		conn := sess.(session.DbSession).Connection()
		res, err := conn.Exec(fmt.Sprintf("DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at <= now()", s.table))
		if err != nil {
			return err
		}
		affected = res.RowsAffected()
		return nil
	})
	return affected, errors.Wrap(err, "pg: unable to purge expired entries")
}

func (s *Store) Setup(ctx context.Context) error {
	err := s.exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key text PRIMARY KEY,
			content_type text NOT NULL,
			body bytea NOT NULL,
			expires_at timestamptz NULL
		)`, s.table))
	return errors.Wrap(err, "pg: unable to create cache table")
}

func (s *Store) Cleanup(ctx context.Context) error {
	err := s.exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table))
	return errors.Wrap(err, "pg: unable to drop cache table")
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return s.pool.Session(ctx, func(sess session.Session) error {
		_, err := sess.(session.DbSession).Connection().Exec(query, args...)
		return err
	})
}
