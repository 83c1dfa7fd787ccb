package testutils

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	pgxsession "github.com/krew-solutions/ascetic-signals-go/asceticsignals/session/pgx"
)

// NewPgSessionPool connects to DATABASE_URL and skips the test when it is
// not set. The pool is closed on cleanup.
func NewPgSessionPool(t testing.TB) *pgxsession.SessionPool {
	t.Helper()
	connString := getEnv("DATABASE_URL", "")
	if connString == "" {
		t.Skip("DATABASE_URL is not set")
	}
	pool, err := pgxsession.Connect(context.Background(), connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
