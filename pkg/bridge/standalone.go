package bridge

import (
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// standalone is the no-host bridge used for development and tests.
type standalone struct{}

// Standalone returns a host capability with no host behind it.
// Publishing is a no-op and no parameter is ever declared.
func Standalone() ports.Host {
	return standalone{}
}

func (standalone) HostPresent() bool { return false }

func (standalone) Subscribe(string, ports.Handler) ports.UnsubscribeFunc {
	return func() {}
}

func (standalone) Publish(string, any) {}

func (standalone) Slider(domain.ParameterID) (ports.SliderRelay, bool) { return nil, false }

func (standalone) Toggle(domain.ParameterID) (ports.ToggleRelay, bool) { return nil, false }
