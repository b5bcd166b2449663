/*
Package domain contains the core models shared by the control surface and the host.

It defines what crosses the boundary between the UI and the native host: parameter
identifiers and normalized values, activation snapshots and status codes, the wire
envelopes of the event bridge and the lifecycle hooks used for observability.
This package is kept free of I/O so every adapter can depend on it.

# Key Entities

  - ParameterID: The stable, case-sensitive contract key between UI and host.
  - BatchUpdate: One (ParameterID, normalized value) write in an ordered batch.
  - ActivationInfo: Immutable license snapshot produced by the host.
  - ActivationState / Phase: The UI's cached view of the license state machine.
  - Status: The canonical activation status vocabulary and its message table.
  - Envelope: A named event plus opaque payload carried by a transport.
*/
package domain
