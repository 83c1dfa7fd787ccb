package cache

import (
	"context"
	"time"
)

const (
	ContentTypeText   = "text/plain"
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// Entry is a stored value together with the content type that tells Get how
// to rebuild it.
type Entry struct {
	ContentType string
	Body        []byte
}

// Store is the raw key-value layer behind a Cache. Keys arrive already
// normalised and namespaced as "<namespace>:<key>".
type Store interface {
	// Put stores entry; a ttl of zero or less means no expiry.
	Put(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// Fetch reports false for missing and expired keys.
	Fetch(ctx context.Context, key string) (Entry, bool, error)
	Delete(ctx context.Context, key string) error
	// Drop removes every key of the namespace.
	Drop(ctx context.Context, namespace string) error
}

// NamespacedKey joins a namespace and a key the way stores expect.
func NamespacedKey(namespace, key string) string {
	return namespace + ":" + key
}

// NamespacePrefix is the prefix shared by every key of namespace.
func NamespacePrefix(namespace string) string {
	return namespace + ":"
}
