// Package param binds individual UI controls to host parameters.
//
// A Slider or Toggle keeps a local copy of its parameter and writes
// optimistically: the local value changes at once and the write is forwarded
// to the host without waiting. Host change notifications reconcile the local
// copy, except while a slider is being dragged, when the local value is
// authoritative until the gesture ends.
//
// Bindings whose id the host does not know, or that run without a host, are
// disconnected: they behave as plain local values.
package param
