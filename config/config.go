// Package config loads proxy configuration from YAML and wires it into
// a registry, a routing strategy, and a coordinator.
//
// A configuration file has three sections, all but `backends` optional:
//
//	backends:
//	  github:
//	    command: docker
//	    args: [run, -i, --rm, ghcr.io/github/github-mcp-server]
//	    env:
//	      GITHUB_PERSONAL_ACCESS_TOKEN: "${GITHUB_TOKEN}"
//	    transport: stdio
//	  filesystem:
//	    command: mcp-fs
//	    args: [/projects]
//
//	proxy:
//	  default_backend: filesystem
//	  routing_strategy: prefix
//	  call_timeout: 30s
//
//	routing:
//	  prefix_delimiter: "_"
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/toolproxy/backend"
	"github.com/jonwraymond/toolproxy/proxy"
	"github.com/jonwraymond/toolproxy/route"
)

// ErrConfiguration indicates an invalid or incomplete configuration.
var ErrConfiguration = errors.New("configuration error")

// BackendConfig declares one backend's launch parameters.
type BackendConfig struct {
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	Transport string            `yaml:"transport"`
}

// ProxyConfig holds coordinator-level settings.
type ProxyConfig struct {
	// DefaultBackend receives requests whose routing key matches no
	// known backend. Default: the first backend ID in sorted order.
	DefaultBackend string `yaml:"default_backend"`

	// RoutingStrategy selects "prefix" or "hint". Default: "prefix".
	RoutingStrategy string `yaml:"routing_strategy"`

	// CallTimeout bounds each backend handshake and invocation, in
	// time.ParseDuration syntax. Default: the coordinator's default.
	CallTimeout string `yaml:"call_timeout"`
}

// RoutingConfig holds strategy parameters.
type RoutingConfig struct {
	// PrefixDelimiter separates the backend prefix from the native tool
	// name. Default: "_".
	PrefixDelimiter string `yaml:"prefix_delimiter"`
}

// Config is a parsed configuration file.
type Config struct {
	Backends map[string]BackendConfig `yaml:"backends"`
	Proxy    ProxyConfig              `yaml:"proxy"`
	Routing  RoutingConfig            `yaml:"routing"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return Parse(data)
}

// Parse parses configuration bytes, applies defaults, and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults sets default values for unset optional fields.
func (c *Config) applyDefaults() {
	if c.Proxy.RoutingStrategy == "" {
		c.Proxy.RoutingStrategy = "prefix"
	}
	if c.Routing.PrefixDelimiter == "" {
		c.Routing.PrefixDelimiter = route.DefaultDelimiter
	}
	if c.Proxy.DefaultBackend == "" && len(c.Backends) > 0 {
		ids := make([]string, 0, len(c.Backends))
		for id := range c.Backends {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		c.Proxy.DefaultBackend = ids[0]
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("%w: no backends configured", ErrConfiguration)
	}
	if _, ok := c.Backends[c.Proxy.DefaultBackend]; !ok {
		return fmt.Errorf("%w: default backend %q is not configured", ErrConfiguration, c.Proxy.DefaultBackend)
	}
	switch c.Proxy.RoutingStrategy {
	case "prefix", "hint":
	default:
		return fmt.Errorf("%w: unknown routing strategy %q", ErrConfiguration, c.Proxy.RoutingStrategy)
	}
	if c.Proxy.CallTimeout != "" {
		if _, err := time.ParseDuration(c.Proxy.CallTimeout); err != nil {
			return fmt.Errorf("%w: bad call_timeout: %v", ErrConfiguration, err)
		}
	}
	return nil
}

// Registry builds the immutable backend registry.
func (c *Config) Registry() (*backend.Registry, error) {
	ids := make([]string, 0, len(c.Backends))
	for id := range c.Backends {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	descs := make([]backend.Descriptor, 0, len(ids))
	for _, id := range ids {
		bc := c.Backends[id]
		descs = append(descs, backend.Descriptor{
			ID:        id,
			Command:   bc.Command,
			Args:      bc.Args,
			Env:       bc.Env,
			Transport: backend.Transport(bc.Transport),
		})
	}
	return backend.NewRegistry(descs...)
}

// Strategy builds the configured routing strategy over a registry.
func (c *Config) Strategy(reg *backend.Registry) route.Strategy {
	if c.Proxy.RoutingStrategy == "hint" {
		return route.NewHint(reg, c.Proxy.DefaultBackend)
	}
	return route.NewPrefix(reg, c.Routing.PrefixDelimiter, c.Proxy.DefaultBackend)
}

// CallTimeout returns the parsed per-call timeout, zero when unset.
func (c *Config) CallTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Proxy.CallTimeout)
	return d
}

// Coordinator wires the whole configuration into a coordinator using
// the default MCP dialer.
func (c *Config) Coordinator(logger proxy.Logger) (*proxy.Coordinator, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return proxy.New(proxy.Options{
		Registry:    reg,
		Strategy:    c.Strategy(reg),
		CallTimeout: c.CallTimeout(),
		Logger:      logger,
	})
}
