package signals

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_ConnectDelegatesToSignal(t *testing.T) {
	s := NewSignal[sampleEvent]()
	ev := s.Event()
	var received sampleEvent
	conn := mustConnect(t, ev, func(e sampleEvent) error { received = e; return nil })

	require.NoError(t, s.Fire(sampleEvent{7}))
	assert.Equal(t, sampleEvent{7}, received)
	assert.Equal(t, 1, s.Len())

	conn.Disconnect()
	assert.Equal(t, 0, s.Len())
}

func TestEvent_MirrorsDestruction(t *testing.T) {
	s := NewSignal[sampleEvent]()
	ev := s.Event()
	assert.False(t, ev.IsDestroyed())

	s.Destroy()
	assert.True(t, ev.IsDestroyed())

	_, err := ev.Connect(func(e sampleEvent) error { return nil })
	assert.ErrorIs(t, err, ErrDestroyedSignal)
}

func TestEvent_HasNoFireCapability(t *testing.T) {
	ev := NewSignal[sampleEvent]().Event()

	_, canFire := ev.(interface{ Fire(sampleEvent) error })
	assert.False(t, canFire)
	_, canDestroy := ev.(interface{ Destroy() })
	assert.False(t, canDestroy)
	_, isSignal := ev.(*SignalImp[sampleEvent])
	assert.False(t, isSignal)

	_, found := reflect.TypeOf(ev).MethodByName("Fire")
	assert.False(t, found)
}

func TestEvent_MultipleFacadesShareSignal(t *testing.T) {
	s := NewSignal[sampleEvent]()
	ev1 := s.Event()
	ev2 := s.Event()
	assert.NotSame(t, ev1, ev2)

	calls := 0
	mustConnect(t, ev1, func(e sampleEvent) error { calls++; return nil })
	mustConnect(t, ev2, func(e sampleEvent) error { calls++; return nil })

	require.NoError(t, s.Fire(sampleEvent{1}))
	assert.Equal(t, 2, calls)
}
