package pgx

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/session"
)

// Session is a database session outside any transaction.
type Session struct {
	ctx  context.Context
	conn *pgxpool.Conn
	pool *SessionPool
}

func NewSession(ctx context.Context, conn *pgxpool.Conn, pool *SessionPool) *Session {
	return &Session{ctx: ctx, conn: conn, pool: pool}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return &connection{session: s, exec: s.conn, pool: s.pool}
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	return runAtomic(NewTransactionSession(s.ctx, tx, s.pool), callback, "transaction")
}

// TransactionSession runs inside a transaction. Nested Atomic calls open
// savepoints.
type TransactionSession struct {
	ctx  context.Context
	tx   pgx.Tx
	pool *SessionPool
}

func NewTransactionSession(ctx context.Context, tx pgx.Tx, pool *SessionPool) *TransactionSession {
	return &TransactionSession{ctx: ctx, tx: tx, pool: pool}
}

func (s *TransactionSession) Context() context.Context {
	return s.ctx
}

func (s *TransactionSession) Connection() session.DbConnection {
	return &connection{session: s, exec: s.tx, pool: s.pool}
}

func (s *TransactionSession) Atomic(callback session.SessionCallback) error {
	nestedTx, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}
	return runAtomic(NewTransactionSession(s.ctx, nestedTx, s.pool), callback, "savepoint")
}

func runAtomic(s *TransactionSession, callback session.SessionCallback, scope string) error {
	if err := callback(s); err != nil {
		if txErr := s.tx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := s.tx.Commit(s.ctx); txErr != nil {
		return errors.Wrapf(txErr, "failed to commit %s", scope)
	}
	return nil
}

// executor is satisfied by both *pgxpool.Conn and pgx.Tx.
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

type connection struct {
	session session.DbSession
	exec    executor
	pool    *SessionPool
}

func (c *connection) observe(query string, args []any, run func() error) error {
	if err := c.pool.onQueryStarted.Fire(session.QueryStartedEvent{
		Query:   query,
		Params:  args,
		Session: c.session,
	}); err != nil {
		return err
	}
	start := time.Now()
	err := run()
	if endedErr := c.pool.onQueryEnded.Fire(session.QueryEndedEvent{
		Query:        query,
		Params:       args,
		Session:      c.session,
		ResponseTime: time.Since(start),
		Err:          err,
	}); err == nil {
		err = endedErr
	}
	return err
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	var tag pgconn.CommandTag
	err := c.observe(query, args, func() error {
		var err error
		tag, err = c.exec.Exec(c.session.Context(), query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result{rowsAffected: tag.RowsAffected()}, nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	var r pgx.Rows
	err := c.observe(query, args, func() error {
		var err error
		r, err = c.exec.Query(c.session.Context(), query, args...)
		return err
	})
	if err != nil {
		if r != nil {
			r.Close()
		}
		return nil, err
	}
	return rows{Rows: r}, nil
}

// QueryRow defers errors to Scan, like pgx does.
func (c *connection) QueryRow(query string, args ...any) session.Row {
	var r pgx.Row
	err := c.observe(query, args, func() error {
		r = c.exec.QueryRow(c.session.Context(), query, args...)
		return nil
	})
	if err != nil {
		if r != nil {
			// Scan closes the row and frees the connection for the next statement.
			_ = r.Scan()
		}
		return errRow{err: err}
	}
	return r
}

type result struct {
	rowsAffected int64
}

func (r result) RowsAffected() int64 {
	return r.rowsAffected
}

type rows struct {
	pgx.Rows
}

func (r rows) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
