package signals

import (
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/disposable"
	"github.com/krew-solutions/ascetic-signals-go/asceticsignals/freearray"
)

type reference[E any] struct {
	observer   Observer[E]
	connection *connection[E]
}

type connection[E any] struct {
	references   *freearray.FreeArray[reference[E]]
	location     string
	disconnected bool
}

// openConnection is the only way a connection comes to life: it occupies its
// slot before anyone can see it.
func openConnection[E any](refs *freearray.FreeArray[reference[E]], observer Observer[E]) *connection[E] {
	c := &connection[E]{references: refs}
	c.location = refs.Push(reference[E]{observer: observer, connection: c})
	return c
}

func (c *connection[E]) Disconnect() {
	if c.disconnected {
		return
	}
	c.disconnected = true
	c.references.Remove(c.location)
}

func (c *connection[E]) Dispose() {
	c.Disconnect()
}

func (c *connection[E]) IsDisconnected() bool {
	return c.disconnected
}

func (c *connection[E]) isConnection() {}

// compositeConnection spans one connection per delegate signal.
type compositeConnection struct {
	connections []Connection
	disposables *disposable.CompositeDisposable
}

func newCompositeConnection() *compositeConnection {
	return &compositeConnection{disposables: disposable.NewCompositeDisposable()}
}

func (c *compositeConnection) add(conn Connection) {
	c.connections = append(c.connections, conn)
	c.disposables.Add(conn)
}

func (c *compositeConnection) Disconnect() {
	c.disposables.Dispose()
}

func (c *compositeConnection) Dispose() {
	c.Disconnect()
}

// IsDisconnected is true when every delegate connection is gone, whether it
// was disconnected through the composite or by its own signal's destruction.
func (c *compositeConnection) IsDisconnected() bool {
	for _, conn := range c.connections {
		if !conn.IsDisconnected() {
			return false
		}
	}
	return true
}

func (c *compositeConnection) isConnection() {}
