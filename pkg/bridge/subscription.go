package bridge

import (
	"sync"

	"github.com/dredimura/surface/pkg/ports"
)

// subscriberList keeps handlers in registration order.
// Removal marks the entry so an in-progress fan-out skips it.
type subscriberList[F any] struct {
	mu      sync.Mutex
	entries []*entry[F]
}

type entry[F any] struct {
	fn      F
	removed bool
}

func (l *subscriberList[F]) add(fn F) ports.UnsubscribeFunc {
	e := &entry[F]{fn: fn}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			e.removed = true
			for i, cur := range l.entries {
				if cur == e {
					l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
					break
				}
			}
		})
	}
}

// each calls fn for every handler registered when the fan-out starts.
// An entry removed by an earlier call of the same fan-out is skipped.
func (l *subscriberList[F]) each(fn func(F)) {
	l.mu.Lock()
	entries := make([]*entry[F], len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	for _, e := range entries {
		l.mu.Lock()
		removed := e.removed
		l.mu.Unlock()
		if !removed {
			fn(e.fn)
		}
	}
}
