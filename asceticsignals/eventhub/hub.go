package eventhub

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/signals"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/uniqueid"
)

var ErrHubClosed = errors.New("eventhub: hub is closed")

type destroyer interface {
	Destroy()
}

// Hub keeps one signal per event type, created lazily on first use.
// Like the signals it holds, a Hub is meant for a single goroutine.
type Hub struct {
	signals  map[reflect.Type]destroyer
	order    []reflect.Type
	generate uniqueid.Generator
	closed   bool
}

func New(generate uniqueid.Generator) *Hub {
	return &Hub{
		signals:  make(map[reflect.Type]destroyer),
		generate: generate,
	}
}

func signalFor[E any](h *Hub) *signals.SignalImp[E] {
	eventType := reflect.TypeFor[E]()
	if s, ok := h.signals[eventType]; ok {
		return s.(*signals.SignalImp[E])
	}
	s := signals.NewSignal[E](signals.WithGenerator(h.generate))
	h.signals[eventType] = s
	h.order = append(h.order, eventType)
	return s
}

// Subscribe connects observer to events of type E.
func Subscribe[E any](h *Hub, observer signals.Observer[E]) (signals.Connection, error) {
	if h.closed {
		return nil, ErrHubClosed
	}
	return signalFor[E](h).Connect(observer)
}

// Publish fires event to the subscribers of its type. Publishing a type that
// nobody subscribed to is not an error.
func Publish[E any](h *Hub, event E) error {
	if h.closed {
		return ErrHubClosed
	}
	s, ok := h.signals[reflect.TypeFor[E]()]
	if !ok {
		return nil
	}
	return s.(*signals.SignalImp[E]).Fire(event)
}

// On returns the subscribe-only view of events of type E.
func On[E any](h *Hub) signals.Event[E] {
	if h.closed {
		s := signals.NewSignal[E]()
		s.Destroy()
		return s.Event()
	}
	return signalFor[E](h).Event()
}

// Subscribers returns the number of live connections for events of type E.
func Subscribers[E any](h *Hub) int {
	s, ok := h.signals[reflect.TypeFor[E]()]
	if !ok {
		return 0
	}
	return s.(*signals.SignalImp[E]).Len()
}

// Close destroys every signal in creation order, disconnecting all
// subscribers. It is safe to call more than once.
func (h *Hub) Close() {
	if h.closed {
		return
	}
	h.closed = true
	for _, eventType := range h.order {
		h.signals[eventType].Destroy()
	}
}

func (h *Hub) IsClosed() bool {
	return h.closed
}
