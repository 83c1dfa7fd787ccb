package disposable

// Disposable releases whatever it holds. Dispose must be idempotent.
type Disposable interface {
	Dispose()
}

type DisposableImp struct {
	callback func()
	disposed bool
}

func NewDisposable(callback func()) *DisposableImp {
	return &DisposableImp{callback: callback}
}

func (d *DisposableImp) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	if d.callback != nil {
		d.callback()
	}
}

func (d *DisposableImp) IsDisposed() bool {
	return d.disposed
}

// CompositeDisposable disposes its delegates in the order they were added.
type CompositeDisposable struct {
	delegates []Disposable
	disposed  bool
}

func NewCompositeDisposable(delegates ...Disposable) *CompositeDisposable {
	return &CompositeDisposable{delegates: delegates}
}

// Add appends delegates. Adding to an already disposed composite disposes
// them immediately.
func (d *CompositeDisposable) Add(delegates ...Disposable) {
	if d.disposed {
		for _, delegate := range delegates {
			delegate.Dispose()
		}
		return
	}
	d.delegates = append(d.delegates, delegates...)
}

func (d *CompositeDisposable) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	for _, delegate := range d.delegates {
		delegate.Dispose()
	}
}

func (d *CompositeDisposable) IsDisposed() bool {
	return d.disposed
}

func (d *CompositeDisposable) Delegates() []Disposable {
	return d.delegates
}
