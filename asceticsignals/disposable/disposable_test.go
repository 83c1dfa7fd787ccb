package disposable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisposable_CallsCallbackOnce(t *testing.T) {
	calls := 0
	d := NewDisposable(func() { calls++ })
	d.Dispose()
	d.Dispose()
	assert.Equal(t, 1, calls)
	assert.True(t, d.IsDisposed())
}

func TestDisposable_NilCallback(t *testing.T) {
	d := NewDisposable(nil)
	d.Dispose()
	assert.True(t, d.IsDisposed())
}

func TestCompositeDisposable_DisposesInOrder(t *testing.T) {
	var order []int
	d := NewCompositeDisposable(
		NewDisposable(func() { order = append(order, 1) }),
		NewDisposable(func() { order = append(order, 2) }),
	)
	d.Add(NewDisposable(func() { order = append(order, 3) }))
	d.Dispose()
	d.Dispose()
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.True(t, d.IsDisposed())
}

func TestCompositeDisposable_AddAfterDispose(t *testing.T) {
	d := NewCompositeDisposable()
	d.Dispose()

	late := NewDisposable(nil)
	d.Add(late)
	assert.True(t, late.IsDisposed())
	assert.Empty(t, d.Delegates())
}
