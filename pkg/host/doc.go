// Package host plays the native side of the bridge.
//
// A Host owns the authoritative parameter values, maps normalized writes onto
// each parameter's range (skew and interval snapping included), records one
// undo entry per completed gesture and answers license requests through a
// Licensing component. It talks to the UI only through a ports.Transport.
package host
