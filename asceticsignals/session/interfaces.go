package session

import (
	"context"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/signals"
)

type SessionCallback func(Session) error

type Session interface {
	Context() context.Context
	Atomic(SessionCallback) error
}

type SessionPoolCallback func(Session) error

type SessionPool interface {
	Session(context.Context, SessionPoolCallback) error
}

// ObservableSessionPool exposes its lifecycle as subscribe-only events.
type ObservableSessionPool interface {
	SessionPool
	OnSessionStarted() signals.Event[SessionScopeStartedEvent]
	OnSessionEnded() signals.Event[SessionScopeEndedEvent]
	OnQueryStarted() signals.Event[QueryStartedEvent]
	OnQueryEnded() signals.Event[QueryEndedEvent]
}

// Db

type Result interface {
	RowsAffected() int64
}

type Rows interface {
	Close() error
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type Row interface {
	Scan(dest ...any) error
}

type DbExecutor interface {
	Exec(query string, args ...any) (Result, error)
}

type DbQuerier interface {
	Query(query string, args ...any) (Rows, error)
}

type DbSingleQuerier interface {
	QueryRow(query string, args ...any) Row
}

type DbConnection interface {
	DbExecutor
	DbQuerier
	DbSingleQuerier
}

type DbSession interface {
	Session
	Connection() DbConnection
}
