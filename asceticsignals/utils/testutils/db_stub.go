package testutils

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/session"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/signals"
)

// SessionPoolStub hands the same DbSessionStub to every Session call.
type SessionPoolStub struct {
	Db *DbSessionStub
}

func NewSessionPoolStub(db *DbSessionStub) *SessionPoolStub {
	return &SessionPoolStub{Db: db}
}

func (p *SessionPoolStub) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	p.Db.ctx = ctx
	return callback(p.Db)
}

type Query struct {
	Sql    string
	Params []any
}

func NewDbSessionStub(rows *RowsStub) *DbSessionStub {
	stub := &DbSessionStub{
		Rows:           rows,
		ctx:            context.Background(),
		onQueryStarted: signals.NewSignal[session.QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[session.QueryEndedEvent](),
	}
	stub.conn = &connectionStub{session: stub}
	return stub
}

// DbSessionStub records every statement it receives and answers queries
// from Rows. Err, when set, is returned by every statement instead.
type DbSessionStub struct {
	Rows           *RowsStub
	Err            error
	RowsAffected   int64
	ActualQuery    string
	ActualParams   []any
	Queries        []Query
	ctx            context.Context
	conn           *connectionStub
	onQueryStarted *signals.SignalImp[session.QueryStartedEvent]
	onQueryEnded   *signals.SignalImp[session.QueryEndedEvent]
}

func (s *DbSessionStub) Context() context.Context {
	return s.ctx
}

func (s *DbSessionStub) Atomic(callback session.SessionCallback) error {
	return callback(s)
}

func (s *DbSessionStub) Connection() session.DbConnection {
	return s.conn
}

func (s *DbSessionStub) OnQueryStarted() signals.Event[session.QueryStartedEvent] {
	return s.onQueryStarted.Event()
}

func (s *DbSessionStub) OnQueryEnded() signals.Event[session.QueryEndedEvent] {
	return s.onQueryEnded.Event()
}

func (s *DbSessionStub) record(query string, args []any) error {
	s.ActualQuery = query
	s.ActualParams = args
	s.Queries = append(s.Queries, Query{Sql: query, Params: args})
	if err := s.onQueryStarted.Fire(session.QueryStartedEvent{Query: query, Params: args, Session: s}); err != nil {
		return err
	}
	return s.onQueryEnded.Fire(session.QueryEndedEvent{Query: query, Params: args, Session: s, Err: s.Err})
}

type connectionStub struct {
	session *DbSessionStub
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	if err := c.session.record(query, args); err != nil {
		return nil, err
	}
	if c.session.Err != nil {
		return nil, c.session.Err
	}
	return resultStub(c.session.RowsAffected), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	if err := c.session.record(query, args); err != nil {
		return nil, err
	}
	if c.session.Err != nil {
		return nil, c.session.Err
	}
	return c.session.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	if err := c.session.record(query, args); err != nil {
		return &RowStub{err: err}
	}
	if c.session.Err != nil {
		return &RowStub{err: c.session.Err}
	}
	return &RowStub{rows: c.session.Rows}
}

type resultStub int64

func (r resultStub) RowsAffected() int64 {
	return int64(r)
}

func NewRowsStub(rows ...[]any) *RowsStub {
	return &RowsStub{
		rows:   rows,
		idx:    -1,
		Closed: false,
	}
}

type RowsStub struct {
	rows   [][]any
	idx    int
	Closed bool
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("no current row")
	}

	row := r.rows[r.idx]
	for i, val := range row {
		if i >= len(dest) {
			break
		}

		switch d := dest[i].(type) {
		case *int:
			*d = int(toInt64(val))
		case *int64:
			*d = toInt64(val)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		case *[]byte:
			if val == nil {
				*d = nil
			} else {
				*d = val.([]byte)
			}
		case *float64:
			*d = toFloat64(val)
		case *time.Time:
			*d = val.(time.Time)
		case *any:
			*d = val
		case sql.Scanner:
			if err := d.Scan(val); err != nil {
				return err
			}
		default:
			return errors.New("unsupported scan type")
		}
	}
	return nil
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	default:
		panic("cannot convert to int64")
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic("cannot convert to float64")
	}
}

// RowStub scans the first remaining row and reports pgx.ErrNoRows when
// there is none, matching what a pgx QueryRow does.
type RowStub struct {
	rows *RowsStub
	err  error
}

func (r *RowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.rows == nil || !r.rows.Next() {
		return pgx.ErrNoRows
	}
	defer r.rows.Close()
	return r.rows.Scan(dest...)
}
