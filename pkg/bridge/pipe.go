package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dredimura/surface/pkg/domain"
)

// ErrTransportClosed is returned when sending on a closed transport end.
var ErrTransportClosed = errors.New("transport closed")

// PipeEnd is one side of an in-process transport pair.
type PipeEnd struct {
	in     *mailbox
	out    *mailbox
	peer   *PipeEnd
	closed atomic.Bool
	host   bool

	once sync.Once
}

// NewPipe returns two connected transport ends: the UI end and the host end.
// Sends never block; each end receives in send order.
func NewPipe() (ui *PipeEnd, host *PipeEnd) {
	toHost := newMailbox()
	toUI := newMailbox()
	ui = &PipeEnd{in: toUI, out: toHost}
	host = &PipeEnd{in: toHost, out: toUI, host: true}
	ui.peer = host
	host.peer = ui
	return ui, host
}

// Send queues env for the peer.
func (p *PipeEnd) Send(ctx context.Context, env domain.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.out.put(env) {
		return ErrTransportClosed
	}
	return nil
}

// Receive returns the inbound stream of this end.
func (p *PipeEnd) Receive(ctx context.Context) (<-chan domain.Envelope, error) {
	if p.closed.Load() {
		return nil, ErrTransportClosed
	}
	ch := make(chan domain.Envelope)
	go func() {
		defer close(ch)
		p.in.pump(ctx.Done(), func(env domain.Envelope) bool {
			select {
			case ch <- env:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return ch, nil
}

// Present reports whether the host end is attached and open.
func (p *PipeEnd) Present(ctx context.Context) bool {
	if p.host {
		return !p.closed.Load()
	}
	return !p.peer.closed.Load()
}

// Close shuts both directions of this end.
func (p *PipeEnd) Close() error {
	p.once.Do(func() {
		p.closed.Store(true)
		p.in.close()
		p.out.close()
	})
	return nil
}
