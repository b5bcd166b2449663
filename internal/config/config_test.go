package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dredimura/surface/internal/config"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.TransportPipe, cfg.Bridge.Transport)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout())
	assert.Equal(t, 3*time.Second, cfg.PresenceTTL())
	assert.Zero(t, cfg.RecordTTL())
	assert.Equal(t, len(host.DefaultLayout()), len(cfg.Layout()))
	assert.False(t, cfg.Licensing.Enabled)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "surface.yaml", `
plugin:
  name: Test Amp
bridge:
  transport: redis
redis:
  addr: redis:6379
  record_ttl: 24h
licensing:
  enabled: true
  licenses:
    - code: ABCD-1234
      max_activations: 2
      expires_at: "2030-01-01T00:00:00Z"
parameters:
  - id: gain
    kind: continuous
    min: 0
    max: 10
    interval: 0.5
    default: 2
  - id: mute
    kind: boolean
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// 1. Overridden fields
	assert.Equal(t, "Test Amp", cfg.Plugin.Name)
	assert.Equal(t, config.TransportRedis, cfg.Bridge.Transport)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.RecordTTL())

	// 2. Untouched defaults survive
	assert.Equal(t, "surface:", cfg.Redis.Prefix)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Licensing.Authority)

	// 3. Layout with inline range
	layout := cfg.Layout()
	require.Len(t, layout, 2)
	assert.Equal(t, domain.ParameterID("gain"), layout[0].ID)
	assert.Equal(t, domain.Range{Min: 0, Max: 10, Interval: 0.5}, layout[0].Range)
	assert.Equal(t, 2.0, layout[0].Default)
	assert.Equal(t, domain.KindBoolean, layout[1].Kind)

	// 4. License table
	licenses, err := cfg.Licenses()
	require.NoError(t, err)
	require.Len(t, licenses, 1)
	assert.Equal(t, 2, licenses[0].MaxActivations)
	assert.Equal(t, 2030, licenses[0].ExpiresAt.Year())
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "surface.json", `{"bridge": {"transport": "none"}, "metrics": {"enabled": false}}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.TransportNone, cfg.Bridge.Transport)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"transport":     "bridge:\n  transport: carrier-pigeon\n",
		"store":         "licensing:\n  store: disk\n",
		"remote no url": "licensing:\n  authority: remote\n",
		"mcp":           "mcp:\n  transport: grpc\n",
		"duration":      "redis:\n  presence_ttl: soon\n",
		"negative":      "bridge:\n  connect_timeout: -1s\n",
		"license code":  "licensing:\n  licenses:\n    - max_activations: 1\n",
		"license date":  "licensing:\n  licenses:\n    - code: X\n      expires_at: tomorrow\n",
		"range":         "parameters:\n  - id: a\n    min: 1\n    max: 1\n",
		"duplicate":     "parameters:\n  - id: a\n    kind: boolean\n  - id: a\n    kind: boolean\n",
		"syntax":        "bridge: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(write(t, "surface.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DuplicateParameterIsTyped(t *testing.T) {
	path := write(t, "surface.yaml", "parameters:\n  - id: a\n    kind: boolean\n  - id: a\n    kind: boolean\n")
	_, err := config.Load(path)
	assert.ErrorIs(t, err, domain.ErrDuplicateParameter)
}

func TestConfig_EncryptionKeys(t *testing.T) {
	key := "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=" // 32 ASCII bytes

	cfg := config.Default()
	active, fallback, err := cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	cfg.Licensing.EncryptionKey = key
	cfg.Licensing.FallbackKeys = []string{key}
	active, fallback, err = cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)

	cfg.Licensing.EncryptionKey = "c2hvcnQ="
	_, _, err = cfg.EncryptionKeys()
	assert.Error(t, err)

	cfg.Licensing.EncryptionKey = ""
	_, _, err = cfg.EncryptionKeys()
	assert.Error(t, err, "fallback keys without an active key")
}
