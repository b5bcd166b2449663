package mirror

import "sync/atomic"

// Flag marks that a local operation is in flight. The zero value is lowered.
type Flag struct {
	raised atomic.Bool
}

// TryRaise raises the flag and reports whether it was lowered before.
// A false return means another operation already holds it.
func (f *Flag) TryRaise() bool {
	return f.raised.CompareAndSwap(false, true)
}

// Lower clears the flag and reports whether it was raised.
func (f *Flag) Lower() bool {
	return f.raised.CompareAndSwap(true, false)
}

// Raised reports the current state.
func (f *Flag) Raised() bool {
	return f.raised.Load()
}
