package middleware

import "github.com/dredimura/surface/pkg/ports"

// Middleware allows wrapping an ActivationStore to add behavior.
type Middleware func(ports.ActivationStore) ports.ActivationStore

// Chain wraps store so that the first middleware is the outermost.
func Chain(store ports.ActivationStore, mws ...Middleware) ports.ActivationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
