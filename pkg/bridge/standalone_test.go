package bridge_test

import (
	"testing"

	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestStandalone(t *testing.T) {
	host := bridge.Standalone()

	assert.False(t, host.HostPresent())

	called := false
	unsub := host.Subscribe(domain.EventActivationState, func(any) { called = true })
	host.Publish(domain.EventGetActivationStatus, nil)
	unsub()
	assert.False(t, called)

	_, ok := host.Slider("drive")
	assert.False(t, ok)
	_, ok = host.Toggle("bypass")
	assert.False(t, ok)
}
