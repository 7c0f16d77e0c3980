package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Common errors for backend operations.
var (
	// ErrBackendNotFound indicates a backend ID absent from the registry.
	ErrBackendNotFound = errors.New("backend not found")

	// ErrToolNotFound indicates the backend does not advertise the
	// requested tool.
	ErrToolNotFound = errors.New("tool not found in backend")

	// ErrConnection indicates a handshake or transport failure opening or
	// using a backend session. The backend is presumed down for this call
	// only.
	ErrConnection = errors.New("backend connection error")

	// ErrTimeout indicates a bounded wait was exceeded during handshake
	// or invocation.
	ErrTimeout = errors.New("backend timeout")

	// ErrApplication indicates the backend was reachable but reported a
	// negative result for the requested tool. It does not imply the
	// backend is down.
	ErrApplication = errors.New("backend application error")

	// ErrUnsupportedTransport indicates a descriptor names a transport
	// kind no dialer can serve.
	ErrUnsupportedTransport = errors.New("unsupported transport")
)

// Transport identifies how a backend session is established.
type Transport string

// Supported transport kinds.
const (
	// TransportStdio launches the backend as a child process and speaks
	// MCP over its stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP connects to an already-running backend over
	// streamable HTTP. The descriptor's Command field holds the endpoint
	// URL.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether the transport kind is one this module knows.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}

// Descriptor declares one backend: its stable identifier and how to
// launch or reach it. Descriptors are value types, created once from
// configuration and immutable afterwards.
type Descriptor struct {
	// ID is the unique, stable identifier routing keys resolve to.
	ID string

	// Command is the executable to launch for stdio transports, or the
	// endpoint URL for HTTP transports.
	Command string

	// Args are passed to the command in order. Opaque to this module.
	Args []string

	// Env holds additional environment variables for the child process.
	Env map[string]string

	// Transport selects how the session is established.
	// Default: TransportStdio.
	Transport Transport
}

// Validate checks that the descriptor is complete enough to dial.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("backend descriptor: ID is required")
	}
	if d.Command == "" {
		return fmt.Errorf("backend descriptor %q: Command is required", d.ID)
	}
	if d.Transport != "" && !d.Transport.IsValid() {
		return fmt.Errorf("backend descriptor %q: %w: %q", d.ID, ErrUnsupportedTransport, d.Transport)
	}
	return nil
}

// Capability describes one named tool a backend advertises. The input
// schema is an opaque JSON-like value; only the decision layer inspects
// it, routing never does.
type Capability struct {
	mcp.Tool
}

// Session is one live connection to a backend.
//
// Contract:
// - Lifetime: a session serves a single invocation scope; Close must be
//   called on every exit path, including error paths.
// - Concurrency: a session need not be safe for concurrent use; callers
//   do not share sessions across goroutines.
// - Context: methods must honor cancellation and deadlines.
// - Errors: transport failures wrap ErrConnection or ErrTimeout;
//   backend-reported failures wrap ErrApplication.
type Session interface {
	// ListCapabilities returns the tools the backend advertises.
	ListCapabilities(ctx context.Context) ([]Capability, error)

	// Invoke calls a tool by its native name, with no routing prefix
	// attached. The returned payload is backend-defined.
	Invoke(ctx context.Context, tool string, args map[string]any) (any, error)

	// Close releases the session's process and transport resources.
	Close() error
}

// Dialer opens sessions to backends.
//
// Contract:
// - Dial performs the liveness handshake before returning; a session it
//   returns is ready to use.
// - Dial must fail fast under the context's deadline rather than hang on
//   an unresponsive backend.
// - Concurrency: implementations must be safe for concurrent use.
type Dialer interface {
	Dial(ctx context.Context, desc Descriptor) (Session, error)
}

// InvokeError records a failure while talking to one backend. It wraps
// the underlying error so callers can classify it with errors.Is against
// the sentinels above.
type InvokeError struct {
	// Backend is the ID of the backend the failure belongs to.
	Backend string

	// Tool is the native tool name, when the failure occurred during an
	// invocation. Empty for handshake and listing failures.
	Tool string

	// Err is the underlying error.
	Err error
}

// Error returns the failure description including the backend ID.
func (e *InvokeError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("backend %s: tool %s: %v", e.Backend, e.Tool, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *InvokeError) Unwrap() error {
	return e.Err
}
