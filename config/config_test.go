package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/toolproxy/route"
)

const sampleYAML = `
backends:
  github:
    command: docker
    args: [run, -i, --rm, ghcr.io/github/github-mcp-server]
    env:
      GITHUB_PERSONAL_ACCESS_TOKEN: token
  filesystem:
    command: mcp-fs
    args: [/projects]

proxy:
  default_backend: filesystem
  routing_strategy: prefix
  call_timeout: 45s

routing:
  prefix_delimiter: "_"
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := len(cfg.Backends); got != 2 {
		t.Fatalf("len(Backends) = %d, want 2", got)
	}
	gh := cfg.Backends["github"]
	if gh.Command != "docker" {
		t.Errorf("github command = %q, want %q", gh.Command, "docker")
	}
	if gh.Env["GITHUB_PERSONAL_ACCESS_TOKEN"] != "token" {
		t.Errorf("github env missing token entry")
	}
	if cfg.Proxy.DefaultBackend != "filesystem" {
		t.Errorf("DefaultBackend = %q, want %q", cfg.Proxy.DefaultBackend, "filesystem")
	}
	if got := cfg.CallTimeout(); got != 45*time.Second {
		t.Errorf("CallTimeout() = %v, want 45s", got)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("backends:\n  solo:\n    command: mcp-solo\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Proxy.RoutingStrategy != "prefix" {
		t.Errorf("RoutingStrategy = %q, want %q", cfg.Proxy.RoutingStrategy, "prefix")
	}
	if cfg.Routing.PrefixDelimiter != route.DefaultDelimiter {
		t.Errorf("PrefixDelimiter = %q, want %q", cfg.Routing.PrefixDelimiter, route.DefaultDelimiter)
	}
	if cfg.Proxy.DefaultBackend != "solo" {
		t.Errorf("DefaultBackend = %q, want %q", cfg.Proxy.DefaultBackend, "solo")
	}
	if got := cfg.CallTimeout(); got != 0 {
		t.Errorf("CallTimeout() = %v, want 0", got)
	}
}

func TestParse_DefaultBackendSortedFirst(t *testing.T) {
	cfg, err := Parse([]byte("backends:\n  zeta:\n    command: z\n  alpha:\n    command: a\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Proxy.DefaultBackend != "alpha" {
		t.Errorf("DefaultBackend = %q, want %q", cfg.Proxy.DefaultBackend, "alpha")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", ":\tnope"},
		{"no backends", "proxy:\n  default_backend: x\n"},
		{"unknown default", "backends:\n  a:\n    command: a\nproxy:\n  default_backend: missing\n"},
		{"unknown strategy", "backends:\n  a:\n    command: a\nproxy:\n  routing_strategy: roulette\n"},
		{"bad timeout", "backends:\n  a:\n    command: a\nproxy:\n  call_timeout: soon\n"},
		{"bad transport", "backends:\n  a:\n    command: a\n    transport: carrier-pigeon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if err == nil {
				// Transport validity surfaces when the registry is built.
				_, err = cfg.Registry()
			}
			if err == nil {
				t.Fatalf("Parse(%s): expected an error", tt.name)
			}
		})
	}
}

func TestParse_ErrConfiguration(t *testing.T) {
	_, err := Parse([]byte("backends: {}\n"))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Parse() error = %v, want ErrConfiguration", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Proxy.DefaultBackend != "filesystem" {
		t.Errorf("DefaultBackend = %q, want %q", cfg.Proxy.DefaultBackend, "filesystem")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Load() error = %v, want ErrConfiguration", err)
	}
}

func TestRegistry(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if got := reg.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	desc, ok := reg.Resolve("filesystem")
	if !ok {
		t.Fatalf("Resolve(filesystem) not found")
	}
	if desc.Command != "mcp-fs" {
		t.Errorf("filesystem command = %q, want %q", desc.Command, "mcp-fs")
	}
}

func TestStrategy(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}

	s := cfg.Strategy(reg)
	if s.Name() != "prefix" {
		t.Errorf("Strategy().Name() = %q, want %q", s.Name(), "prefix")
	}
	d := s.Route("github_create_issue", "")
	if d.BackendID != "github" || d.NativeTool != "create_issue" {
		t.Errorf("Route() = %+v, want github/create_issue", d)
	}

	cfg.Proxy.RoutingStrategy = "hint"
	if got := cfg.Strategy(reg).Name(); got != "hint" {
		t.Errorf("Strategy().Name() = %q, want %q", got, "hint")
	}
}

func TestCoordinator(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c, err := cfg.Coordinator(nil)
	if err != nil {
		t.Fatalf("Coordinator() error = %v", err)
	}

	snap := c.DescribeConfiguration()
	if snap.Strategy != "prefix" {
		t.Errorf("Strategy = %q, want %q", snap.Strategy, "prefix")
	}
	if snap.DefaultBackend != "filesystem" {
		t.Errorf("DefaultBackend = %q, want %q", snap.DefaultBackend, "filesystem")
	}
	if snap.CallTimeout != 45*time.Second {
		t.Errorf("CallTimeout = %v, want 45s", snap.CallTimeout)
	}
}
