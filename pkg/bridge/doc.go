/*
Package bridge implements the event bridge between the control surface and the host.

Two implementations of ports.Host are provided:

  - Standalone: no host attached. Every publish is a no-op, no parameter is
    known, and dependants fall back to their local defaults.
  - Relay: a host reachable through a ports.Transport. A single dispatcher
    goroutine delivers inbound envelopes in order, keeps the per-parameter
    relay cache current and fans events out to subscribers in registration order.

Pipe provides an in-process pair of connected transports, used to run the
simulated host next to the surface and in tests.
*/
package bridge
