package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/dredimura/surface/pkg/adapters/redis"
	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/host"
	"github.com/dredimura/surface/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_Contract(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	hostEnd, err := redis.NewHostTransport(ctx, client)
	require.NoError(t, err)
	defer hostEnd.Close()
	ui := redis.NewUITransport(client)
	defer ui.Close()

	tests.TransportContractTest(t, ui, hostEnd)
}

func TestTransport_Presence(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()
	ui := redis.NewUITransport(client, redis.WithChannelPrefix("p:"))
	defer ui.Close()

	// 1. No host yet
	assert.False(t, ui.Present(ctx))

	// 2. Host attaches and holds an expiring presence key
	hostEnd, err := redis.NewHostTransport(ctx, client, redis.WithChannelPrefix("p:"), redis.WithPresenceTTL(3*time.Second))
	require.NoError(t, err)
	assert.True(t, ui.Present(ctx))
	assert.True(t, hostEnd.Present(ctx))
	assert.Greater(t, mr.TTL("p:host"), time.Duration(0))

	// 3. A second host cannot attach
	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = redis.NewHostTransport(short, client, redis.WithChannelPrefix("p:"))
	assert.ErrorIs(t, err, redis.ErrHostTaken)

	// 4. Detaching releases presence
	require.NoError(t, hostEnd.Close())
	assert.False(t, ui.Present(ctx))
	assert.False(t, hostEnd.Present(ctx))
}

func TestTransport_HostCrashExpires(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	// A host that stopped heartbeating disappears after the TTL.
	require.NoError(t, mr.Set("surface:host", "stale"))
	mr.SetTTL("surface:host", time.Second)

	ui := redis.NewUITransport(client)
	assert.True(t, ui.Present(ctx))
	mr.FastForward(2 * time.Second)
	assert.False(t, ui.Present(ctx))
}

func TestTransport_SendAfterClose(t *testing.T) {
	_, client := newClient(t)
	ui := redis.NewUITransport(client)
	require.NoError(t, ui.Close())

	err := ui.Send(context.Background(), domain.Envelope{Event: domain.EventParameterSync})
	assert.ErrorIs(t, err, bridge.ErrTransportClosed)
	_, err = ui.Receive(context.Background())
	assert.ErrorIs(t, err, bridge.ErrTransportClosed)
}

func TestTransport_MalformedEnvelopeSkipped(t *testing.T) {
	_, client := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hostEnd, err := redis.NewHostTransport(ctx, client)
	require.NoError(t, err)
	defer hostEnd.Close()

	in, err := hostEnd.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, "surface:to-host", "garbage").Err())
	ui := redis.NewUITransport(client)
	require.NoError(t, ui.Send(ctx, domain.Envelope{Event: domain.EventParameterSync}))

	select {
	case env := <-in:
		assert.Equal(t, domain.EventParameterSync, env.Event)
	case <-ctx.Done():
		t.Fatal("timed out")
	}
}

// The relay must understand manifests and updates after a JSON round trip.
func TestTransport_RelayOverRedis(t *testing.T) {
	mr, client := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Host side
	hostEnd, err := redis.NewHostTransport(ctx, client)
	require.NoError(t, err)
	h, err := host.New(hostEnd, host.DefaultLayout())
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
		_ = hostEnd.Close()
	}()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("surface:to-host")["surface:to-host"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	// 2. UI side
	dialCtx, dialCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dialCancel()
	relay, err := bridge.Dial(dialCtx, redis.NewUITransport(client))
	require.NoError(t, err)
	defer relay.Close()

	drive, ok := relay.Slider("drive")
	require.True(t, ok)
	assert.Equal(t, domain.Range{Min: 0, Max: 10, Interval: 0.1, Skew: 1}, drive.Range())
	assert.InDelta(t, 0.3, drive.NormalizedValue(), 1e-9)

	// 3. A write comes back quantized
	changed := make(chan struct{}, 4)
	drive.OnValueChanged(func() { changed <- struct{}{} })
	drive.SetNormalizedValue(0.456)

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no update from host")
	}
	assert.InDelta(t, 0.46, drive.NormalizedValue(), 1e-9)
	v, _ := h.Value("drive")
	assert.InDelta(t, 4.6, v, 1e-9)
}
