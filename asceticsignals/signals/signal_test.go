package signals

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/uniqueid"
)

type sampleEvent struct {
	payload int
}

func recorder(calls *[]string, name string) Observer[sampleEvent] {
	return func(e sampleEvent) error {
		*calls = append(*calls, name)
		return nil
	}
}

func mustConnect(t *testing.T, s Event[sampleEvent], observer Observer[sampleEvent]) Connection {
	t.Helper()
	conn, err := s.Connect(observer)
	require.NoError(t, err)
	require.NotNil(t, conn)
	return conn
}

func TestSignal_ConnectAndFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var received sampleEvent
	mustConnect(t, s, func(e sampleEvent) error { received = e; return nil })

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, sampleEvent{1}, received)
}

func TestSignal_FireDeliversInRegistrationOrder(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []string
	mustConnect(t, s, recorder(&calls, "A"))
	mustConnect(t, s, recorder(&calls, "B"))
	mustConnect(t, s, recorder(&calls, "C"))

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []string{"A", "B", "C"}, calls)
}

func TestSignal_FireNoObservers(t *testing.T) {
	s := NewSignal[sampleEvent]()
	assert.NoError(t, s.Fire(sampleEvent{1}))
}

func TestSignal_SameObserverConnectedTwiceIsCalledTwice(t *testing.T) {
	s := NewSignal[sampleEvent]()
	calls := 0
	observer := Observer[sampleEvent](func(e sampleEvent) error { calls++; return nil })
	c1 := mustConnect(t, s, observer)
	c2 := mustConnect(t, s, observer)
	assert.NotSame(t, c1, c2)

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, 2, calls)
}

func TestSignal_Disconnect(t *testing.T) {
	s := NewSignal[sampleEvent]()
	called := false
	conn := mustConnect(t, s, func(e sampleEvent) error { called = true; return nil })

	conn.Disconnect()
	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.False(t, called)
	assert.True(t, conn.IsDisconnected())
	assert.Equal(t, 0, s.Len())
}

func TestSignal_DisconnectIsIdempotent(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []string
	mustConnect(t, s, recorder(&calls, "A"))
	conn := mustConnect(t, s, recorder(&calls, "B"))

	conn.Disconnect()
	lenAfterFirst := s.Len()
	conn.Disconnect()

	assert.Equal(t, lenAfterFirst, s.Len())
	assert.Equal(t, 1, s.Len())
	assert.True(t, conn.IsDisconnected())
}

func TestSignal_DisposeDisconnects(t *testing.T) {
	s := NewSignal[sampleEvent]()
	called := false
	conn := mustConnect(t, s, func(e sampleEvent) error { called = true; return nil })

	conn.Dispose()
	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.False(t, called)
	assert.True(t, conn.IsDisconnected())
}

func TestSignal_DisconnectSelfDuringFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []string
	mustConnect(t, s, recorder(&calls, "A"))
	var connB Connection
	connB = mustConnect(t, s, func(e sampleEvent) error {
		calls = append(calls, "B")
		connB.Disconnect()
		return nil
	})
	mustConnect(t, s, recorder(&calls, "C"))

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []string{"A", "B", "C"}, calls)

	calls = nil
	require.NoError(t, s.Fire(sampleEvent{2}))
	assert.Equal(t, []string{"A", "C"}, calls)
}

func TestSignal_DisconnectLaterObserverDuringFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []string
	var connC Connection
	mustConnect(t, s, func(e sampleEvent) error {
		calls = append(calls, "A")
		connC.Disconnect()
		return nil
	})
	mustConnect(t, s, recorder(&calls, "B"))
	connC = mustConnect(t, s, recorder(&calls, "C"))

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []string{"A", "B"}, calls)
}

func TestSignal_DisconnectEarlierObserverDuringFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []string
	connA := mustConnect(t, s, recorder(&calls, "A"))
	mustConnect(t, s, func(e sampleEvent) error {
		calls = append(calls, "B")
		connA.Disconnect()
		return nil
	})
	mustConnect(t, s, recorder(&calls, "C"))

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []string{"A", "B", "C"}, calls)

	calls = nil
	require.NoError(t, s.Fire(sampleEvent{2}))
	assert.Equal(t, []string{"B", "C"}, calls)
}

func TestSignal_ConnectDuringFire(t *testing.T) {
	// Whether an observer connected mid-dispatch sees the same pass is not
	// part of the contract. This pins down the current behaviour: it does,
	// because it is appended behind the cursor's live slot.
	s := NewSignal[sampleEvent]()
	var calls []string
	connected := false
	mustConnect(t, s, func(e sampleEvent) error {
		calls = append(calls, "A")
		if !connected {
			connected = true
			mustConnect(t, s, recorder(&calls, "late"))
		}
		return nil
	})

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []string{"A", "late"}, calls)

	calls = nil
	require.NoError(t, s.Fire(sampleEvent{2}))
	assert.Equal(t, []string{"A", "late"}, calls)
}

func TestSignal_NestedFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var payloads []int
	mustConnect(t, s, func(e sampleEvent) error {
		payloads = append(payloads, e.payload)
		if e.payload == 1 {
			return s.Fire(sampleEvent{2})
		}
		return nil
	})

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []int{1, 2}, payloads)
}

func TestSignal_ObserverErrorAbortsDispatch(t *testing.T) {
	s := NewSignal[sampleEvent]()
	expectedErr := errors.New("fail")
	var calls []string
	mustConnect(t, s, recorder(&calls, "A"))
	mustConnect(t, s, func(e sampleEvent) error {
		calls = append(calls, "B")
		return expectedErr
	})
	mustConnect(t, s, recorder(&calls, "C"))

	err := s.Fire(sampleEvent{1})
	assert.Same(t, expectedErr, err)
	assert.Equal(t, []string{"A", "B"}, calls)
}

func TestSignal_ObserverPanicPropagates(t *testing.T) {
	s := NewSignal[sampleEvent]()
	called := false
	mustConnect(t, s, func(e sampleEvent) error { panic("boom") })
	mustConnect(t, s, func(e sampleEvent) error { called = true; return nil })

	assert.PanicsWithValue(t, "boom", func() { _ = s.Fire(sampleEvent{1}) })
	assert.False(t, called)
}

func TestSignal_IsolatedDispatchCallsEveryObserver(t *testing.T) {
	s := NewSignal[sampleEvent](WithIsolatedDispatch())
	err1 := errors.New("first")
	err2 := errors.New("second")
	var calls []string
	mustConnect(t, s, func(e sampleEvent) error { calls = append(calls, "A"); return err1 })
	mustConnect(t, s, recorder(&calls, "B"))
	mustConnect(t, s, func(e sampleEvent) error { calls = append(calls, "C"); return err2 })

	err := s.Fire(sampleEvent{1})
	require.Error(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, calls)
	assert.ErrorIs(t, err, err1)
	assert.ErrorIs(t, err, err2)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestSignal_IsolatedDispatchWithoutErrors(t *testing.T) {
	s := NewSignal[sampleEvent](WithIsolatedDispatch())
	mustConnect(t, s, func(e sampleEvent) error { return nil })
	assert.NoError(t, s.Fire(sampleEvent{1}))
}

func TestSignal_DestroyCascades(t *testing.T) {
	s := NewSignal[sampleEvent]()
	conns := []Connection{
		mustConnect(t, s, func(e sampleEvent) error { return nil }),
		mustConnect(t, s, func(e sampleEvent) error { return nil }),
		mustConnect(t, s, func(e sampleEvent) error { return nil }),
	}
	conns[1].Disconnect()

	s.Destroy()

	assert.True(t, s.IsDestroyed())
	assert.Equal(t, 0, s.Len())
	for _, conn := range conns {
		assert.True(t, conn.IsDisconnected())
	}
}

func TestSignal_DestroyedRejectsConnectAndFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	s.Destroy()

	conn, err := s.Connect(func(e sampleEvent) error { return nil })
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, ErrDestroyedSignal)
	assert.Equal(t, 0, s.Len())

	err = s.Fire(sampleEvent{1})
	assert.ErrorIs(t, err, ErrDestroyedSignal)
}

func TestSignal_DestroyTwiceIsNoop(t *testing.T) {
	s := NewSignal[sampleEvent]()
	conn := mustConnect(t, s, func(e sampleEvent) error { return nil })

	s.Destroy()
	assert.NotPanics(t, s.Destroy)
	assert.True(t, s.IsDestroyed())
	assert.True(t, conn.IsDisconnected())
}

func TestSignal_DestroyDuringFire(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []string
	mustConnect(t, s, recorder(&calls, "A"))
	b := mustConnect(t, s, func(e sampleEvent) error {
		calls = append(calls, "B")
		s.Destroy()
		return nil
	})
	c := mustConnect(t, s, recorder(&calls, "C"))

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, []string{"A", "B"}, calls)
	assert.True(t, b.IsDisconnected())
	assert.True(t, c.IsDisconnected())
	assert.ErrorIs(t, s.Fire(sampleEvent{2}), ErrDestroyedSignal)
}

func TestSignal_DisconnectDuringDestroy(t *testing.T) {
	// Disconnecting an already cascaded connection after destroy stays a no-op.
	s := NewSignal[sampleEvent]()
	conn := mustConnect(t, s, func(e sampleEvent) error { return nil })
	s.Destroy()
	conn.Disconnect()
	assert.True(t, conn.IsDisconnected())
}

func TestSignal_WithGenerator(t *testing.T) {
	s := NewSignal[sampleEvent](WithGenerator(uniqueid.Sequence("c")))
	mustConnect(t, s, func(e sampleEvent) error { return nil })
	mustConnect(t, s, func(e sampleEvent) error { return nil })
	assert.Equal(t, []string{"c0", "c1"}, s.references.Keys())
}

func TestSignal_ConnectionOccupiesExactlyOneSlot(t *testing.T) {
	s := NewSignal[sampleEvent]()
	conn := mustConnect(t, s, func(e sampleEvent) error { return nil })

	c := conn.(*connection[sampleEvent])
	ref, ok := s.references.Get(c.location)
	require.True(t, ok)
	assert.Same(t, c, ref.connection)
	assert.Equal(t, 1, s.Len())
}

func TestIsConnection(t *testing.T) {
	s := NewSignal[sampleEvent]()
	conn := mustConnect(t, s, func(e sampleEvent) error { return nil })

	assert.True(t, IsConnection(conn))
	assert.False(t, IsConnection(nil))
	assert.False(t, IsConnection("connection"))
	assert.False(t, IsConnection(s))
}

func TestSignal_ImplementsSignal(t *testing.T) {
	var _ Signal[sampleEvent] = NewSignal[sampleEvent]()
	var _ Signal[sampleEvent] = NewCompositeSignal[sampleEvent]()
}
