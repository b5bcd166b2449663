package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dredimura/surface"
	surfacemcp "github.com/dredimura/surface/pkg/adapters/mcp"
	"github.com/dredimura/surface/pkg/adapters/memory"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*surface.Surface, *surfacemcp.Server) {
	t.Helper()
	presets, err := memory.NewPresets(domain.Preset{ID: "warm", Updates: []domain.BatchUpdate{{ID: "drive", Value: 0.2}}})
	require.NoError(t, err)

	s := surface.New(nil, surface.WithPresets(presets))
	t.Cleanup(func() { _ = s.Close() })
	s.Start()
	_, err = s.Slider("drive", 0.5)
	require.NoError(t, err)

	return s, surfacemcp.NewServer(s)
}

// call sends a JSON-RPC request and returns the encoded response.
func call(t *testing.T, srv *surfacemcp.Server, method string, params any) string {
	t.Helper()
	p, err := json.Marshal(params)
	require.NoError(t, err)
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":%s}`, method, p)

	resp := srv.MCPServer().HandleMessage(context.Background(), json.RawMessage(msg))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func tool(t *testing.T, srv *surfacemcp.Server, name string, args map[string]any) string {
	t.Helper()
	return call(t, srv, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestServer_ListTools(t *testing.T) {
	_, srv := newServer(t)

	out := call(t, srv, "tools/list", map[string]any{})
	for _, name := range []string{"get_snapshot", "set_parameter", "apply_batch", "list_presets", "recall_preset", "activate", "deactivate"} {
		assert.Contains(t, out, fmt.Sprintf(`"name":%q`, name))
	}
}

func TestServer_SetParameter(t *testing.T) {
	s, srv := newServer(t)

	out := tool(t, srv, "set_parameter", map[string]any{"id": "drive", "value": 0.75})
	assert.NotContains(t, out, `"isError":true`)
	assert.Equal(t, 0.75, s.Snapshot().Parameters[0].Value)

	out = tool(t, srv, "get_snapshot", map[string]any{})
	assert.Contains(t, out, `0.75`)
}

func TestServer_BatchAndPresets(t *testing.T) {
	s, srv := newServer(t)

	// 1. Batch
	out := tool(t, srv, "apply_batch", map[string]any{"updates": `[{"id":"drive","value":0.9}]`})
	assert.NotContains(t, out, `"isError":true`)
	assert.Equal(t, 0.9, s.Snapshot().Parameters[0].Value)

	out = tool(t, srv, "apply_batch", map[string]any{"updates": `not json`})
	assert.Contains(t, out, `"isError":true`)

	// 2. Presets
	assert.Contains(t, tool(t, srv, "list_presets", map[string]any{}), `warm`)

	out = tool(t, srv, "recall_preset", map[string]any{"id": "warm"})
	assert.NotContains(t, out, `"isError":true`)
	assert.Equal(t, 0.2, s.Snapshot().Parameters[0].Value)

	assert.Contains(t, tool(t, srv, "recall_preset", map[string]any{"id": "cold"}), `"isError":true`)
}

func TestServer_Activation(t *testing.T) {
	_, srv := newServer(t)

	// Standalone surfaces accept activation requests as no-ops.
	out := tool(t, srv, "activate", map[string]any{"code": "DRE-0001"})
	assert.Contains(t, out, `unconfigured`)

	out = tool(t, srv, "activate", map[string]any{"code": " "})
	assert.Contains(t, out, `"isError":true`)
}

func TestServer_SnapshotResource(t *testing.T) {
	_, srv := newServer(t)

	out := call(t, srv, "resources/read", map[string]any{"uri": surfacemcp.SnapshotURI})
	assert.Contains(t, out, surfacemcp.SnapshotURI)
	assert.Contains(t, out, `drive`)
}
