/*
Package surface keeps a plugin's control surface in sync with the host that owns
its parameters.

The host is the single source of truth. The surface holds local copies of the
parameters it renders, writes to them optimistically and reconciles them with
every host notification, except while the user is dragging a control. An
activation state machine decides whether the surface accepts input at all.

# Architecture

The packages follow a hexagonal layout:

  - pkg/domain: parameters, activation state, status codes and the wire protocol.
  - pkg/ports: the Host, Transport, ActivationStore, LicenseAuthority and PresetSource contracts.
  - pkg/bridge: the event bridge (Relay over a Transport, or Standalone).
  - pkg/param, pkg/batch, pkg/activation: bindings, batch updates, license gating.
  - pkg/host: a host simulator playing the native side of the bridge.
  - pkg/adapters: in-memory, Redis, HTTP, MCP, Loam and remote license adapters.
  - pkg/persistence/middleware: audit logging and encryption of activation records.
  - cmd/surface: the CLI (serve, host, mcp, status, presets, messages).

# Usage

	ui, hostEnd := bridge.NewPipe()
	h, _ := host.New(hostEnd, host.DefaultLayout())
	go h.Run(ctx)

	s, err := surface.Connect(ctx, ui)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	s.Start()

	drive, _ := s.Slider("drive", 0.3)
	drive.DragStart()
	drive.SetValue(0.47)
	drive.DragEnd() // re-reads the host's quantized value

Without a host, Connect falls back to standalone mode: bindings keep their
defaults, writes stay local and activation is skipped.
*/
package surface
