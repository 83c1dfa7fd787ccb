package pgx

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/logger"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/session"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/signals"
)

var ErrPoolClosed = errors.New("pgx: session pool is closed")

type Option func(*SessionPool)

func WithLogger(l *slog.Logger) Option {
	return func(p *SessionPool) {
		if l != nil {
			p.logger = l
		}
	}
}

// SessionPool hands out pgx-backed sessions and reports their lifecycle
// through signals.
//
// Connect observers before sharing the pool between goroutines: the signals
// are not synchronised, and concurrent Session calls only ever read them.
// Close may run alongside Session; it waits for sessions in flight.
type SessionPool struct {
	pool             *pgxpool.Pool
	logger           *slog.Logger
	onSessionStarted *signals.SignalImp[session.SessionScopeStartedEvent]
	onSessionEnded   *signals.SignalImp[session.SessionScopeEndedEvent]
	onQueryStarted   *signals.SignalImp[session.QueryStartedEvent]
	onQueryEnded     *signals.SignalImp[session.QueryEndedEvent]

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

func NewSessionPool(pool *pgxpool.Pool, opts ...Option) *SessionPool {
	p := &SessionPool{
		pool:             pool,
		logger:           logger.Discard(),
		onSessionStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onSessionEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
		onQueryStarted:   signals.NewSignal[session.QueryStartedEvent](),
		onQueryEnded:     signals.NewSignal[session.QueryEndedEvent](),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect opens a pgxpool for connString and wraps it.
func Connect(ctx context.Context, connString string, opts ...Option) (*SessionPool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pgx pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "unable to reach postgres")
	}
	return NewSessionPool(pool, opts...), nil
}

func (p *SessionPool) OnSessionStarted() signals.Event[session.SessionScopeStartedEvent] {
	return p.onSessionStarted.Event()
}

func (p *SessionPool) OnSessionEnded() signals.Event[session.SessionScopeEndedEvent] {
	return p.onSessionEnded.Event()
}

func (p *SessionPool) OnQueryStarted() signals.Event[session.QueryStartedEvent] {
	return p.onQueryStarted.Event()
}

func (p *SessionPool) OnQueryEnded() signals.Event[session.QueryEndedEvent] {
	return p.onQueryEnded.Event()
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if !p.enter() {
		return ErrPoolClosed
	}
	defer p.inflight.Done()

	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to acquire connection")
	}
	defer conn.Release()

	sess := NewSession(ctx, conn, p)

	if err := p.onSessionStarted.Fire(session.SessionScopeStartedEvent{Session: sess}); err != nil {
		return err
	}

	err = callback(sess)

	endedErr := p.onSessionEnded.Fire(session.SessionScopeEndedEvent{Session: sess, Err: err})
	if err == nil {
		return endedErr
	}
	if endedErr != nil {
		p.logger.WarnContext(ctx, "session ended observer failed",
			logger.Component("session/pgx"),
			logger.Error(endedErr),
		)
	}
	return err
}

func (p *SessionPool) enter() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.inflight.Add(1)
	return true
}

// Close rejects new sessions, waits for the running ones, then disconnects
// every observer and closes the underlying pool. It must not be called from
// inside a session callback.
func (p *SessionPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.inflight.Wait()
	p.onSessionStarted.Destroy()
	p.onSessionEnded.Destroy()
	p.onQueryStarted.Destroy()
	p.onQueryEnded.Destroy()
	if p.pool != nil {
		p.pool.Close()
	}
}
