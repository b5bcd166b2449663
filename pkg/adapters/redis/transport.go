package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ErrHostTaken is returned when another host already holds the presence lease.
var ErrHostTaken = errors.New("another host is attached")

// DefaultPresenceTTL is how long a host stays present without a heartbeat.
const DefaultPresenceTTL = 3 * time.Second

// Transport is one end of a bridge carried over Redis pub/sub.
// Envelopes are JSON; each direction has its own channel. The host end holds a
// presence lease that the UI end probes.
type Transport struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	host   bool

	lease *Lease

	stop   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
	once   sync.Once
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithChannelPrefix sets the prefix of channels and the presence key.
func WithChannelPrefix(prefix string) TransportOption {
	return func(t *Transport) {
		t.prefix = prefix
	}
}

// WithPresenceTTL sets the lifetime of the host presence lease.
func WithPresenceTTL(ttl time.Duration) TransportOption {
	return func(t *Transport) {
		t.ttl = ttl
	}
}

// WithTransportLogger configures a logger for the transport.
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) {
		t.logger = logger
	}
}

func newTransport(client *backend.Client, host bool, opts []TransportOption) *Transport {
	t := &Transport{
		client: client,
		prefix: DefaultPrefix,
		ttl:    DefaultPresenceTTL,
		logger: logging.NewNop(),
		host:   host,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewUITransport returns the UI end.
func NewUITransport(client *backend.Client, opts ...TransportOption) *Transport {
	return newTransport(client, false, opts)
}

// NewHostTransport returns the host end once it holds the presence lease.
// It waits for a previous host's lease until ctx ends, then fails with ErrHostTaken.
func NewHostTransport(ctx context.Context, client *backend.Client, opts ...TransportOption) (*Transport, error) {
	t := newTransport(client, true, opts)

	lease, err := AcquireLease(ctx, client, t.presenceKey(), t.ttl)
	if err != nil {
		if errors.Is(err, ErrLeaseHeld) {
			return nil, fmt.Errorf("%w: %v", ErrHostTaken, err)
		}
		return nil, err
	}
	t.lease = lease

	t.wg.Add(1)
	go t.heartbeat()

	return t, nil
}

func (t *Transport) presenceKey() string { return t.prefix + "host" }

func (t *Transport) inbound() string {
	if t.host {
		return t.prefix + "to-host"
	}
	return t.prefix + "to-ui"
}

func (t *Transport) outbound() string {
	if t.host {
		return t.prefix + "to-ui"
	}
	return t.prefix + "to-host"
}

// Send publishes env on the peer's channel.
func (t *Transport) Send(ctx context.Context, env domain.Envelope) error {
	if t.closed.Load() {
		return bridge.ErrTransportClosed
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := t.client.Publish(ctx, t.outbound(), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", env.Event, err)
	}
	return nil
}

// Receive subscribes to this end's channel. The subscription is confirmed
// before Receive returns, so nothing sent afterwards is missed.
func (t *Transport) Receive(ctx context.Context) (<-chan domain.Envelope, error) {
	if t.closed.Load() {
		return nil, bridge.ErrTransportClosed
	}

	sub := t.client.Subscribe(ctx, t.inbound())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", t.inbound(), err)
	}

	ch := make(chan domain.Envelope)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(ch)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env domain.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					t.logger.Warn("Redis: dropping malformed envelope", "channel", msg.Channel, "err", err)
					continue
				}
				select {
				case ch <- env:
				case <-ctx.Done():
					return
				case <-t.stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Present reports whether a host holds the presence lease.
func (t *Transport) Present(ctx context.Context) bool {
	if t.host {
		return !t.closed.Load()
	}
	n, err := t.client.Exists(ctx, t.presenceKey()).Result()
	if err != nil {
		t.logger.Debug("Redis: presence probe failed", "err", err)
		return false
	}
	return n == 1
}

// Close stops the receivers and, on the host end, releases the presence lease.
// The client stays open.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		t.closed.Store(true)
		close(t.stop)
		t.wg.Wait()
		if t.lease != nil {
			ctx, cancel := context.WithTimeout(context.Background(), t.ttl)
			defer cancel()
			err = t.lease.Release(ctx)
		}
	})
	return err
}

func (t *Transport) heartbeat() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), t.ttl)
			err := t.lease.Refresh(ctx)
			if errors.Is(err, ErrLeaseLost) {
				// Expired while the host was stalled; reclaim it if nobody else did.
				var lease *Lease
				lease, err = AcquireLease(ctx, t.client, t.presenceKey(), t.ttl)
				if err == nil {
					t.lease = lease
				}
			}
			cancel()
			if err != nil {
				t.logger.Warn("Redis: presence heartbeat failed", "err", err)
			}
		}
	}
}
