package signals

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/freearray"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/uniqueid"
)

type options struct {
	generate uniqueid.Generator
	isolated bool
}

type Option func(*options)

// WithGenerator sets the id primitive used to key connections.
func WithGenerator(generate uniqueid.Generator) Option {
	return func(o *options) {
		o.generate = generate
	}
}

// WithIsolatedDispatch makes Fire call every observer even when some of them
// fail. The failures come back together as a *multierror.Error.
func WithIsolatedDispatch() Option {
	return func(o *options) {
		o.isolated = true
	}
}

// SignalImp is a synchronous, single-threaded signal. Observers may
// disconnect themselves or others, or destroy the signal, from inside Fire.
type SignalImp[E any] struct {
	references *freearray.FreeArray[reference[E]]
	isolated   bool
	destroyed  bool
}

func NewSignal[E any](opts ...Option) *SignalImp[E] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &SignalImp[E]{
		references: freearray.New[reference[E]](freearray.WithGenerator(o.generate)),
		isolated:   o.isolated,
	}
}

func (s *SignalImp[E]) Connect(observer Observer[E]) (Connection, error) {
	if s.destroyed {
		return nil, errors.WithMessage(ErrDestroyedSignal, "cannot connect")
	}
	return openConnection(s.references, observer), nil
}

// Fire calls the connected observers in registration order.
// By default the first observer error aborts the pass and is returned as is.
func (s *SignalImp[E]) Fire(event E) error {
	if s.destroyed {
		return errors.WithMessage(ErrDestroyedSignal, "cannot fire")
	}
	if s.isolated {
		return s.fireIsolated(event)
	}
	for _, ref := range s.references.All() {
		if err := ref.observer(event); err != nil {
			return err
		}
	}
	return nil
}

func (s *SignalImp[E]) fireIsolated(event E) error {
	var result *multierror.Error
	for _, ref := range s.references.All() {
		if err := ref.observer(event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (s *SignalImp[E]) Event() Event[E] {
	return newEvent[E](s)
}

func (s *SignalImp[E]) IsDestroyed() bool {
	return s.destroyed
}

// Len returns the number of live connections.
func (s *SignalImp[E]) Len() int {
	return s.references.Len()
}

// Destroy disconnects every connection and then rejects further Connect and
// Fire calls. Calling it again does nothing.
func (s *SignalImp[E]) Destroy() {
	if s.destroyed {
		return
	}
	for _, ref := range s.references.All() {
		ref.connection.Disconnect()
	}
	s.references.Destroy()
	s.destroyed = true
}
