package signals

import (
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/disposable"
)

// Observer receives fired events. A non-nil error stops the current dispatch
// unless the signal was built WithIsolatedDispatch.
type Observer[E any] func(E) error

// Connection is the handle of a single registered observer.
type Connection interface {
	disposable.Disposable
	Disconnect()
	IsDisconnected() bool
	isConnection()
}

// Event is the subscribe-only side of a signal. Hand it to code that may
// listen but must not fire.
type Event[E any] interface {
	Connect(observer Observer[E]) (Connection, error)
	IsDestroyed() bool
}

// Signal is the owner side: it can fire and destroy as well as connect.
type Signal[E any] interface {
	Event[E]
	Fire(event E) error
	Event() Event[E]
	Destroy()
}

// IsConnection reports whether value is a connection handle issued by a signal.
func IsConnection(value any) bool {
	_, ok := value.(Connection)
	return ok
}
