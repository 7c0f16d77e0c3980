// Package backend defines backend descriptors, the session contract, and
// the registry the proxy routes against.
//
// A backend is an independently managed process or service exposing a set
// of named tools. This package provides:
//
//   - Descriptor for declaring how a backend is launched and reached
//   - Registry, an immutable table of descriptors keyed by backend ID
//   - Session and Dialer, the scoped connection contract transports implement
//
// # Sessions
//
// Sessions are deliberately short-lived: a caller dials, uses the session,
// and closes it within a single invocation scope. Nothing in this package
// pools or shares sessions across calls, which keeps a single-duplex
// transport (such as a stdio pipe) free of cross-call interleaving.
//
// # Registry
//
// The Registry is built once from configuration and never mutated:
//
//	reg, err := backend.NewRegistry(
//	    backend.Descriptor{ID: "github", Command: "docker", Args: []string{"run", "-i", "ghcr.io/github/github-mcp-server"}},
//	    backend.Descriptor{ID: "filesystem", Command: "mcp-fs"},
//	)
//
//	desc, ok := reg.Resolve("github")
package backend
