package signals

import (
	"github.com/pkg/errors"
)

// CompositeSignal fans out to its delegates in the order they were given.
type CompositeSignal[E any] struct {
	delegates []Signal[E]
}

func NewCompositeSignal[E any](delegates ...Signal[E]) *CompositeSignal[E] {
	return &CompositeSignal[E]{delegates: delegates}
}

// Connect attaches observer to every delegate. Nothing is attached when any
// delegate is already destroyed.
func (s *CompositeSignal[E]) Connect(observer Observer[E]) (Connection, error) {
	if s.IsDestroyed() {
		return nil, errors.WithMessage(ErrDestroyedSignal, "cannot connect")
	}
	conn := newCompositeConnection()
	for _, delegate := range s.delegates {
		c, err := delegate.Connect(observer)
		if err != nil {
			conn.Disconnect()
			return nil, err
		}
		conn.add(c)
	}
	return conn, nil
}

func (s *CompositeSignal[E]) Fire(event E) error {
	if s.IsDestroyed() {
		return errors.WithMessage(ErrDestroyedSignal, "cannot fire")
	}
	for _, delegate := range s.delegates {
		if err := delegate.Fire(event); err != nil {
			return err
		}
	}
	return nil
}

func (s *CompositeSignal[E]) Event() Event[E] {
	return newEvent[E](s)
}

func (s *CompositeSignal[E]) IsDestroyed() bool {
	for _, delegate := range s.delegates {
		if delegate.IsDestroyed() {
			return true
		}
	}
	return false
}

func (s *CompositeSignal[E]) Destroy() {
	for _, delegate := range s.delegates {
		delegate.Destroy()
	}
}
