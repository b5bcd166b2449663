// Package config loads the surface.yaml file shared by the surface commands.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dredimura/surface/pkg/adapters/memory"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/host"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "surface.yaml"

// Bridge transports.
const (
	TransportPipe  = "pipe"
	TransportRedis = "redis"
	TransportNone  = "none"
)

// Config is the root of surface.yaml.
type Config struct {
	Plugin     PluginConfig         `yaml:"plugin" json:"plugin"`
	Log        LogConfig            `yaml:"log" json:"log"`
	Bridge     BridgeConfig         `yaml:"bridge" json:"bridge"`
	Redis      RedisConfig          `yaml:"redis" json:"redis"`
	Licensing  LicensingConfig      `yaml:"licensing" json:"licensing"`
	HTTP       HTTPConfig           `yaml:"http" json:"http"`
	MCP        MCPConfig            `yaml:"mcp" json:"mcp"`
	Metrics    MetricsConfig        `yaml:"metrics" json:"metrics"`
	Presets    PresetsConfig        `yaml:"presets" json:"presets"`
	Parameters []host.ParameterSpec `yaml:"parameters" json:"parameters"`
}

type PluginConfig struct {
	Name      string `yaml:"name" json:"name"`
	MachineID string `yaml:"machine_id" json:"machine_id"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text or json
}

type BridgeConfig struct {
	Transport      string `yaml:"transport" json:"transport"`
	ConnectTimeout string `yaml:"connect_timeout" json:"connect_timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`

	// PresenceTTL is how long a silent host stays present.
	PresenceTTL string `yaml:"presence_ttl" json:"presence_ttl"`

	// RecordTTL expires stored activation records; empty keeps them forever.
	RecordTTL string `yaml:"record_ttl" json:"record_ttl"`
}

type LicensingConfig struct {
	Enabled   bool            `yaml:"enabled" json:"enabled"`
	Store     string          `yaml:"store" json:"store"`         // memory or redis
	Authority string          `yaml:"authority" json:"authority"` // memory or remote
	RemoteURL string          `yaml:"remote_url" json:"remote_url"`
	Licenses  []LicenseConfig `yaml:"licenses" json:"licenses"`

	// EncryptionKey seals stored activation records (base64, 32 bytes).
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`

	// FallbackKeys still open records sealed with retired keys.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// LicenseConfig is one code accepted by the in-memory authority.
type LicenseConfig struct {
	Code           string `yaml:"code" json:"code"`
	MaxActivations int    `yaml:"max_activations" json:"max_activations"`
	ExpiresAt      string `yaml:"expires_at" json:"expires_at"` // RFC 3339
	Revoked        bool   `yaml:"revoked" json:"revoked"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`

	// MountAuthority serves the in-memory authority under /license.
	MountAuthority bool `yaml:"mount_authority" json:"mount_authority"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" json:"transport"` // stdio or sse
	Addr      string `yaml:"addr" json:"addr"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type PresetsConfig struct {
	Dir   string `yaml:"dir" json:"dir"`
	Watch bool   `yaml:"watch" json:"watch"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Plugin:  PluginConfig{Name: "Dre-Dimura"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Bridge:  BridgeConfig{Transport: TransportPipe, ConnectTimeout: "2s"},
		Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "surface:", PresenceTTL: "3s"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		MCP:     MCPConfig{Transport: "stdio", Addr: ":8081"},
		Metrics: MetricsConfig{Enabled: true},
		Licensing: LicensingConfig{
			Store:     "memory",
			Authority: "memory",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Files ending in .json are parsed as JSON, anything else as YAML.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerations, durations and the parameter layout.
func (c *Config) Validate() error {
	switch c.Bridge.Transport {
	case TransportPipe, TransportRedis, TransportNone:
	default:
		return fmt.Errorf("bridge.transport: unknown transport %q", c.Bridge.Transport)
	}
	switch c.Licensing.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("licensing.store: unknown store %q", c.Licensing.Store)
	}
	switch c.Licensing.Authority {
	case "memory":
	case "remote":
		if c.Licensing.RemoteURL == "" {
			return fmt.Errorf("licensing.remote_url is required for the remote authority")
		}
	default:
		return fmt.Errorf("licensing.authority: unknown authority %q", c.Licensing.Authority)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("mcp.transport: unknown transport %q", c.MCP.Transport)
	}

	for field, v := range map[string]string{
		"bridge.connect_timeout": c.Bridge.ConnectTimeout,
		"redis.presence_ttl":     c.Redis.PresenceTTL,
		"redis.record_ttl":       c.Redis.RecordTTL,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if _, err := c.Licenses(); err != nil {
		return err
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}

	seen := make(map[domain.ParameterID]bool, len(c.Parameters))
	for _, p := range c.Parameters {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("parameter %q: %w", p.ID, domain.ErrDuplicateParameter)
		}
		seen[p.ID] = true
	}
	return nil
}

// Layout returns the configured parameters, or the preamp layout when none are declared.
func (c *Config) Layout() []host.ParameterSpec {
	if len(c.Parameters) == 0 {
		return host.DefaultLayout()
	}
	return c.Parameters
}

// ConnectTimeout bounds the bridge handshake.
func (c *Config) ConnectTimeout() time.Duration {
	d, _ := parseDuration(c.Bridge.ConnectTimeout)
	if d <= 0 {
		return 2 * time.Second
	}
	return d
}

// PresenceTTL is the Redis host presence lifetime.
func (c *Config) PresenceTTL() time.Duration {
	d, _ := parseDuration(c.Redis.PresenceTTL)
	return d
}

// RecordTTL is the Redis activation record lifetime; zero keeps records.
func (c *Config) RecordTTL() time.Duration {
	d, _ := parseDuration(c.Redis.RecordTTL)
	return d
}

// Licenses converts the license table for the in-memory authority.
func (c *Config) Licenses() ([]memory.License, error) {
	out := make([]memory.License, 0, len(c.Licensing.Licenses))
	for i, l := range c.Licensing.Licenses {
		if l.Code == "" {
			return nil, fmt.Errorf("licensing.licenses[%d]: code is empty", i)
		}
		lic := memory.License{Code: l.Code, MaxActivations: l.MaxActivations, Revoked: l.Revoked}
		if l.ExpiresAt != "" {
			t, err := time.Parse(time.RFC3339, l.ExpiresAt)
			if err != nil {
				return nil, fmt.Errorf("licensing.licenses[%d].expires_at: %w", i, err)
			}
			lic.ExpiresAt = t
		}
		out = append(out, lic)
	}
	return out, nil
}

// EncryptionKeys decodes the record encryption keys. A nil active key means
// records are stored in the clear.
func (c *Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.Licensing.EncryptionKey == "" {
		if len(c.Licensing.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("licensing.fallback_keys need an encryption_key")
		}
		return nil, nil, nil
	}
	active, err = decodeKey(c.Licensing.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("licensing.encryption_key: %w", err)
	}
	for i, k := range c.Licensing.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("licensing.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}
	return d, nil
}
