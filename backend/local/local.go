// Package local provides an in-process backend of registered handler
// functions. It serves the same Session contract as real transports, so
// examples and embedding tests can exercise the proxy without launching
// child processes.
package local

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/toolproxy/backend"
)

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// ToolDef defines a local tool with its handler.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     HandlerFunc
}

// Dialer serves sessions over a set of registered handlers. A single
// Dialer can back several descriptors; sessions observe the handler set
// as of the moment they were dialed.
type Dialer struct {
	mu       sync.RWMutex
	handlers map[string]ToolDef
}

// New creates a local dialer with no handlers registered.
func New() *Dialer {
	return &Dialer{handlers: make(map[string]ToolDef)}
}

// RegisterHandler registers a tool handler.
func (d *Dialer) RegisterHandler(name string, def ToolDef) {
	if def.Name == "" {
		def.Name = name
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = def
}

// UnregisterHandler removes a tool handler.
func (d *Dialer) UnregisterHandler(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, name)
}

// Dial returns a session over a snapshot of the registered handlers.
func (d *Dialer) Dial(_ context.Context, desc backend.Descriptor) (backend.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot := make(map[string]ToolDef, len(d.handlers))
	for name, def := range d.handlers {
		snapshot[name] = def
	}
	return &session{backendID: desc.ID, handlers: snapshot}, nil
}

type session struct {
	backendID string
	handlers  map[string]ToolDef
}

// ListCapabilities returns the tools this session serves, sorted by name.
func (s *session) ListCapabilities(_ context.Context) ([]backend.Capability, error) {
	out := make([]backend.Capability, 0, len(s.handlers))
	for _, def := range s.handlers {
		out = append(out, backend.Capability{
			Tool: mcp.Tool{
				Name:        def.Name,
				Description: def.Description,
				InputSchema: def.InputSchema,
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Invoke runs a tool handler. An unknown tool is an application-level
// failure: the backend answered, the answer is negative.
func (s *session) Invoke(ctx context.Context, tool string, args map[string]any) (any, error) {
	def, ok := s.handlers[tool]
	if !ok || def.Handler == nil {
		return nil, &backend.InvokeError{
			Backend: s.backendID,
			Tool:    tool,
			Err:     fmt.Errorf("%w: %w: %s", backend.ErrApplication, backend.ErrToolNotFound, tool),
		}
	}

	payload, err := def.Handler(ctx, args)
	if err != nil {
		return nil, &backend.InvokeError{
			Backend: s.backendID,
			Tool:    tool,
			Err:     fmt.Errorf("%w: %v", backend.ErrApplication, err),
		}
	}
	return payload, nil
}

func (s *session) Close() error { return nil }
