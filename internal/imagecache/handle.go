package imagecache

import "sync/atomic"

// Sized is the contract a client-supplied image type must satisfy to be
// stored in the cache: enough to compute its footprint and identify which
// entry it belongs to.
type Sized interface {
	Width() int32
	Height() int32
	Path() string
	SizeInBytes() uint32
}

// control is the shared reference-counted block behind a Handle/WeakHandle
// pair. Unlike runtime.SetFinalizer or the GC-tied runtime/weak package,
// release is deterministic: it fires the instant the last strong Handle is
// released, not at the GC's convenience.
type control[T Sized] struct {
	value  T
	count  atomic.Int32
	onZero func(T)
	fired  atomic.Bool
}

// Handle is a strong, reference-counted owner of a value of type T.
type Handle[T Sized] struct {
	ctrl *control[T]
}

// WeakHandle observes a value without keeping it alive.
type WeakHandle[T Sized] struct {
	ctrl *control[T]
}

// NewHandle wraps value in a strong handle with a refcount of one. onZero is
// invoked exactly once, when the last strong handle derived from it (via
// Clone or a successful WeakHandle.Upgrade) is released.
func NewHandle[T Sized](value T, onZero func(T)) Handle[T] {
	c := &control[T]{value: value, onZero: onZero}
	c.count.Store(1)
	return Handle[T]{ctrl: c}
}

// Valid reports whether the handle owns a value (the zero Handle does not).
func (h Handle[T]) Valid() bool { return h.ctrl != nil }

// Value returns the owned value. Calling it on an invalid handle panics.
func (h Handle[T]) Value() T {
	if h.ctrl == nil {
		panic("imagecache: Value called on a zero Handle")
	}
	return h.ctrl.value
}

// Clone increments the refcount and returns a new strong handle to the same
// value. The caller must Release it independently of h.
func (h Handle[T]) Clone() Handle[T] {
	if h.ctrl == nil {
		panic("imagecache: Clone called on a zero Handle")
	}
	if h.ctrl.count.Add(1) <= 1 {
		// Should be unreachable: the caller holding h already proves the
		// count was >= 1, so Add can't observe a transition through zero.
		panic("imagecache: Clone called on a handle with no live references")
	}
	return Handle[T]{ctrl: h.ctrl}
}

// Weak returns a non-owning observer of the same value.
func (h Handle[T]) Weak() WeakHandle[T] {
	if h.ctrl == nil {
		return WeakHandle[T]{}
	}
	return WeakHandle[T]{ctrl: h.ctrl}
}

// Release drops this reference. When the refcount reaches zero, onZero runs
// exactly once, synchronously, on the releasing goroutine.
func (h Handle[T]) Release() {
	if h.ctrl == nil {
		return
	}
	if h.ctrl.count.Add(-1) == 0 {
		if h.ctrl.fired.CompareAndSwap(false, true) {
			h.ctrl.onZero(h.ctrl.value)
		}
	}
}

// Upgrade attempts to obtain a strong handle, succeeding only while at least
// one strong reference is still alive elsewhere. Mirrors weak_ptr::lock().
func (w WeakHandle[T]) Upgrade() (Handle[T], bool) {
	if w.ctrl == nil {
		return Handle[T]{}, false
	}
	for {
		cur := w.ctrl.count.Load()
		if cur <= 0 {
			return Handle[T]{}, false
		}
		if w.ctrl.count.CompareAndSwap(cur, cur+1) {
			return Handle[T]{ctrl: w.ctrl}, true
		}
	}
}
