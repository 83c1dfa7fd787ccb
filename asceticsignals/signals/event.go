package signals

// event hides the signal behind the subscribe-only interface. Since the type
// is unexported and holds the source in an unexported field, a holder cannot
// assert its way back to Fire or Destroy.
type event[E any] struct {
	source Event[E]
}

func newEvent[E any](source Event[E]) *event[E] {
	return &event[E]{source: source}
}

func (e *event[E]) Connect(observer Observer[E]) (Connection, error) {
	return e.source.Connect(observer)
}

func (e *event[E]) IsDestroyed() bool {
	return e.source.IsDestroyed()
}
