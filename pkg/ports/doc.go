/*
Package ports defines the driven ports (interfaces) of the control surface.

These interfaces decouple the synchronization core from the host process and
from infrastructure, so the same bindings and state machine run against an
in-process host, a Redis-connected host, or no host at all.

# Key Interfaces

  - Bridge: Named-event publish/subscribe channel to the host, with presence detection.
  - ParameterRelay: Per-parameter access to the host-owned values mirrored by the UI.
  - Host: The capability injected into bindings (Bridge + ParameterRelay).
  - Transport: Moves envelopes between the UI and the host (pipe, Redis pub/sub).
  - ActivationStore: Host-side persistence of the activation record.
  - LicenseAuthority: Host-side validation of activation codes.
  - PresetSource: Read access to the preset library.
*/
package ports
