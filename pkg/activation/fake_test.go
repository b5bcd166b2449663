package activation_test

import (
	"sync"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// fakeBridge delivers host events synchronously and records publishes.
type fakeBridge struct {
	present bool
	checks  int // HostPresent calls

	mu        sync.Mutex
	handlers  map[string][]ports.Handler
	published []domain.Envelope
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{present: true, handlers: make(map[string][]ports.Handler)}
}

func (b *fakeBridge) HostPresent() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checks++
	return b.present
}

func (b *fakeBridge) setPresent(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.present = v
}

func (b *fakeBridge) presenceChecks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checks
}

func (b *fakeBridge) Subscribe(event string, h ports.Handler) ports.UnsubscribeFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
	idx := len(b.handlers[event]) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[event][idx] = nil
	}
}

func (b *fakeBridge) Publish(event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, domain.Envelope{Event: event, Payload: payload})
}

func (b *fakeBridge) deliver(event string, payload any) {
	b.mu.Lock()
	hs := append([]ports.Handler(nil), b.handlers[event]...)
	b.mu.Unlock()
	for _, h := range hs {
		if h != nil {
			h(payload)
		}
	}
}

func (b *fakeBridge) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, env := range b.published {
		if env.Event == event {
			n++
		}
	}
	return n
}

func (b *fakeBridge) subscribed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, hs := range b.handlers {
		for _, h := range hs {
			if h != nil {
				n++
			}
		}
	}
	return n
}
