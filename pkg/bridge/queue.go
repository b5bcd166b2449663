package bridge

import (
	"sync"

	"github.com/dredimura/surface/pkg/domain"
)

// mailbox is an unbounded FIFO of envelopes. Put never blocks.
type mailbox struct {
	mu     sync.Mutex
	items  []domain.Envelope
	notify chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// put appends env and reports false if the mailbox is closed.
func (m *mailbox) put(env domain.Envelope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, env)
	select {
	case m.notify <- struct{}{}:
	default:
	}
	m.mu.Unlock()
	return true
}

// drain removes and returns everything queued so far.
func (m *mailbox) drain() ([]domain.Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items, m.closed
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.notify)
}

// pump forwards queued envelopes to deliver until the mailbox is closed
// or done is signalled. deliver returning false stops the pump.
func (m *mailbox) pump(done <-chan struct{}, deliver func(domain.Envelope) bool) {
	for {
		items, closed := m.drain()
		for _, env := range items {
			if !deliver(env) {
				return
			}
		}
		if closed {
			return
		}
		select {
		case <-m.notify:
		case <-done:
			return
		}
	}
}
