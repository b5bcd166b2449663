package mirror

import "sync"

// Value mirrors a remotely owned value.
// It is safe for concurrent use; listeners run outside the lock.
type Value[T comparable] struct {
	mu        sync.Mutex
	local     T
	held      Flag
	listeners []func(T)
}

// NewValue creates a mirror initialised to initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{local: initial}
}

// Get returns the local value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.local
}

// Set writes the local value optimistically, regardless of the hold.
func (v *Value[T]) Set(x T) {
	v.store(x)
}

// Reconcile re-reads the remote value through read and stores it, unless the
// value is held. read is not called while held. It reports whether it applied.
func (v *Value[T]) Reconcile(read func() T) bool {
	v.mu.Lock()
	if v.held.Raised() {
		v.mu.Unlock()
		return false
	}
	x := read()
	changed := v.local != x
	v.local = x
	listeners := v.listeners
	v.mu.Unlock()

	if changed {
		notify(listeners, x)
	}
	return true
}

// Hold suppresses Reconcile until Settle. It reports false if already held.
func (v *Value[T]) Hold() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.held.TryRaise()
}

// Held reports whether remote notifications are currently suppressed.
func (v *Value[T]) Held() bool {
	return v.held.Raised()
}

// Settle releases the hold and overwrites the local value with the remote one.
// It reports false (and reads nothing) if the value was not held.
func (v *Value[T]) Settle(read func() T) bool {
	v.mu.Lock()
	if !v.held.Lower() {
		v.mu.Unlock()
		return false
	}
	v.mu.Unlock()
	v.Reconcile(read)
	return true
}

// Release drops the hold without re-reading the remote value.
// It reports false if the value was not held.
func (v *Value[T]) Release() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.held.Lower()
}

// OnChange registers fn to run after every change of the local value.
func (v *Value[T]) OnChange(fn func(T)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

func (v *Value[T]) store(x T) {
	v.mu.Lock()
	changed := v.local != x
	v.local = x
	listeners := v.listeners
	v.mu.Unlock()

	if changed {
		notify(listeners, x)
	}
}

func notify[T any](listeners []func(T), x T) {
	for _, fn := range listeners {
		fn(x)
	}
}
