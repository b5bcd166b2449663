package ports

import (
	"context"

	"github.com/dredimura/surface/pkg/domain"
)

// Transport moves envelopes between the UI and the host.
// Each side owns one end; envelopes arrive in the order they were sent.
type Transport interface {
	// Send hands an envelope to the peer. It must not wait for the peer to process it.
	Send(ctx context.Context, env domain.Envelope) error

	// Receive returns the inbound stream. It is called once per transport end;
	// the channel is closed when the context is done or the transport is closed.
	Receive(ctx context.Context) (<-chan domain.Envelope, error)

	// Present reports whether the host end is attached.
	Present(ctx context.Context) bool

	Close() error
}
