package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// TransportContractTest is a reusable test suite that verifies if a pair of connected
// transport ends complies with ports.Transport.
func TransportContractTest(t *testing.T, ui, host ports.Transport) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	toHost, err := host.Receive(ctx)
	if err != nil {
		t.Fatalf("host receive failed: %v", err)
	}
	toUI, err := ui.Receive(ctx)
	if err != nil {
		t.Fatalf("ui receive failed: %v", err)
	}

	// 1. Presence
	t.Run("Present", func(t *testing.T) {
		if !ui.Present(ctx) {
			t.Error("expected host to be present from the ui end")
		}
	})

	// 2. Ordered delivery UI -> host
	t.Run("Ordered_UIToHost", func(t *testing.T) {
		const n = 20
		for i := 0; i < n; i++ {
			env := domain.Envelope{Event: domain.EventParameterSet, Payload: map[string]any{"id": fmt.Sprintf("p%d", i)}}
			if err := ui.Send(ctx, env); err != nil {
				t.Fatalf("send %d failed: %v", i, err)
			}
		}
		for i := 0; i < n; i++ {
			select {
			case env := <-toHost:
				if env.Event != domain.EventParameterSet {
					t.Fatalf("unexpected event %q", env.Event)
				}
				if got := payloadID(env.Payload); got != fmt.Sprintf("p%d", i) {
					t.Fatalf("out of order delivery: got %q at position %d", got, i)
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for envelope %d", i)
			}
		}
	})

	// 3. Delivery host -> UI
	t.Run("Deliver_HostToUI", func(t *testing.T) {
		env := domain.Envelope{Event: domain.EventActivationResult, Payload: map[string]any{"status": "valid"}}
		if err := host.Send(ctx, env); err != nil {
			t.Fatalf("send failed: %v", err)
		}
		select {
		case got := <-toUI:
			if got.Event != domain.EventActivationResult {
				t.Errorf("got event %q, want %q", got.Event, domain.EventActivationResult)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for host envelope")
		}
	})
}

func payloadID(payload any) string {
	switch p := payload.(type) {
	case map[string]any:
		id, _ := p["id"].(string)
		return id
	case map[string]string:
		return p["id"]
	}
	return ""
}
