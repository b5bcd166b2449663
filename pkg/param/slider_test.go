package param_test

import (
	"testing"

	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlider_NoHostDefault(t *testing.T) {
	s := param.NewSlider(bridge.Standalone(), "drive", 0.3)
	defer s.Close()

	assert.False(t, s.Connected())
	assert.Equal(t, 0.3, s.Value())

	s.SetValue(0.7)
	assert.Equal(t, 0.7, s.Value())
	assert.Equal(t, domain.Range{Min: 0, Max: 1}, s.Range())
}

func TestSlider_UnknownParameterStaysLocal(t *testing.T) {
	host := newFakeHost()
	s := param.NewSlider(host, "missing", 0.3)

	assert.False(t, s.Connected())
	s.SetValue(0.9)
	assert.Equal(t, 0.9, s.Value())
	assert.Empty(t, host.sliders["drive"].writes)
}

func TestSlider_ReadsHostOnMount(t *testing.T) {
	host := newFakeHost()
	s := param.NewSlider(host, "drive", 0.3)

	assert.True(t, s.Connected())
	assert.Equal(t, 0.4, s.Value())
	assert.Equal(t, 10.0, s.Range().Max)
}

func TestSlider_HostNotificationReconciles(t *testing.T) {
	host := newFakeHost()
	s := param.NewSlider(host, "drive", 0)

	var seen []float64
	s.OnChange(func(v float64) { seen = append(seen, v) })

	host.sliders["drive"].push(0.6)
	assert.Equal(t, 0.6, s.Value())
	assert.Equal(t, []float64{0.6}, seen)
}

func TestSlider_DragIsolation(t *testing.T) {
	host := newFakeHost()
	relay := host.sliders["drive"]
	s := param.NewSlider(host, "drive", 0)

	// 1. Start dragging
	s.DragStart()
	require.True(t, s.Dragging())

	// 2. Local writes during the drag
	s.SetValue(0.33)
	s.SetValue(0.47)

	// 3. Host notifications are ignored while dragging
	relay.push(0.9)
	assert.Equal(t, 0.47, s.Value())

	// 4. A second DragStart does not resend the gesture
	s.DragStart()
	assert.Equal(t, []string{domain.GestureBegin}, relay.gestures)
	assert.Equal(t, []float64{0.33, 0.47}, relay.writes)
}

func TestSlider_DragEndReconciles(t *testing.T) {
	host := newFakeHost()
	relay := host.sliders["drive"]
	s := param.NewSlider(host, "drive", 0)

	s.DragStart()
	s.SetValue(0.47)
	assert.Equal(t, 0.47, s.Value())

	s.DragEnd()
	assert.False(t, s.Dragging())
	assert.Equal(t, 0.5, s.Value(), "host snaps to its interval")
	assert.Equal(t, []string{domain.GestureBegin, domain.GestureEnd}, relay.gestures)

	// Notifications are honoured again.
	relay.push(0.2)
	assert.Equal(t, 0.2, s.Value())
}

func TestSlider_DragEndWithoutStart(t *testing.T) {
	host := newFakeHost()
	relay := host.sliders["drive"]
	s := param.NewSlider(host, "drive", 0)

	s.DragEnd()
	assert.Empty(t, relay.gestures)
	assert.False(t, s.Dragging())
}

func TestSlider_StandaloneDrag(t *testing.T) {
	s := param.NewSlider(bridge.Standalone(), "drive", 0.3)

	s.DragStart()
	s.SetValue(0.8)
	s.DragEnd()

	assert.False(t, s.Dragging())
	assert.Equal(t, 0.8, s.Value())
}

func TestSlider_SetValueOutsideDrag(t *testing.T) {
	host := newFakeHost()
	s := param.NewSlider(host, "drive", 0)

	s.SetValue(1.7)
	assert.False(t, s.Dragging())
	assert.Equal(t, 1.0, s.Value(), "normalized values are clamped")
	assert.Equal(t, []float64{1.0}, host.sliders["drive"].writes)
}

func TestSlider_Close(t *testing.T) {
	host := newFakeHost()
	relay := host.sliders["drive"]
	s := param.NewSlider(host, "drive", 0)
	require.Equal(t, 1, relay.subscribers())

	s.Close()
	s.Close()
	assert.Equal(t, 0, relay.subscribers())

	relay.push(0.9)
	assert.Equal(t, 0.4, s.Value())
}

func TestSlider_Hooks(t *testing.T) {
	host := newFakeHost()
	var events []domain.EventType
	record := func(e *domain.ParamEvent) { events = append(events, e.Type) }

	s := param.NewSlider(host, "drive", 0, param.WithLifecycleHooks(domain.LifecycleHooks{
		OnParamWrite:     record,
		OnParamReconcile: record,
		OnGesture:        record,
	}))

	s.DragStart()
	s.SetValue(0.2)
	s.DragEnd()
	host.sliders["drive"].push(0.3)

	assert.Equal(t, []domain.EventType{
		domain.EventGesture,
		domain.EventParamWrite,
		domain.EventGesture,
		domain.EventParamReconcile,
	}, events)
}
