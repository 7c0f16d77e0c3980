package mcpconn

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/toolproxy/backend"
)

// Default client identity advertised during the MCP handshake.
const (
	DefaultClientName    = "toolproxy"
	DefaultClientVersion = "0.1.0"
)

// Dialer opens MCP sessions for backend descriptors. The zero value is
// ready to use.
type Dialer struct {
	// ClientName and ClientVersion identify this proxy to backends during
	// the initialize handshake. Defaults: DefaultClientName,
	// DefaultClientVersion.
	ClientName    string
	ClientVersion string
}

// Dial launches or connects to the described backend, performs the
// initialize handshake and a ping, and returns a live session.
func (d *Dialer) Dial(ctx context.Context, desc backend.Descriptor) (backend.Session, error) {
	transport, err := d.transportFor(desc)
	if err != nil {
		return nil, &backend.InvokeError{Backend: desc.ID, Err: err}
	}

	name := d.ClientName
	if name == "" {
		name = DefaultClientName
	}
	version := d.ClientVersion
	if version == "" {
		version = DefaultClientVersion
	}

	client := mcp.NewClient(&mcp.Implementation{Name: name, Version: version}, &mcp.ClientOptions{})

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, connectionError(ctx, desc.ID, "", err)
	}

	if err := session.Ping(ctx, nil); err != nil {
		_ = session.Close()
		return nil, connectionError(ctx, desc.ID, "", err)
	}

	return &Session{backendID: desc.ID, session: session}, nil
}

// transportFor builds the SDK transport for the descriptor's kind.
func (d *Dialer) transportFor(desc backend.Descriptor) (mcp.Transport, error) {
	switch desc.Transport {
	case backend.TransportStdio, "":
		cmd := osexec.Command(desc.Command, desc.Args...)
		cmd.Env = os.Environ()
		for k, v := range desc.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		return &mcp.CommandTransport{Command: cmd}, nil
	case backend.TransportStreamableHTTP:
		return &mcp.StreamableClientTransport{Endpoint: desc.Command}, nil
	default:
		return nil, fmt.Errorf("%w: %q", backend.ErrUnsupportedTransport, desc.Transport)
	}
}

// Session is a live MCP session to one backend.
type Session struct {
	backendID string
	session   *mcp.ClientSession
}

// ListCapabilities returns the tools the backend advertises.
func (s *Session) ListCapabilities(ctx context.Context) ([]backend.Capability, error) {
	res, err := s.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, connectionError(ctx, s.backendID, "", err)
	}

	caps := make([]backend.Capability, 0, len(res.Tools))
	for _, tool := range res.Tools {
		caps = append(caps, backend.Capability{Tool: *tool})
	}
	return caps, nil
}

// Invoke calls a tool by its native name. A tool result flagged as an
// error by the backend is returned as backend.ErrApplication; the
// backend is still considered reachable.
func (s *Session) Invoke(ctx context.Context, tool string, args map[string]any) (any, error) {
	res, err := s.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return nil, connectionError(ctx, s.backendID, tool, err)
	}

	if res.IsError {
		return nil, &backend.InvokeError{
			Backend: s.backendID,
			Tool:    tool,
			Err:     fmt.Errorf("%w: %s", backend.ErrApplication, contentText(res.Content)),
		}
	}

	if res.StructuredContent != nil {
		return res.StructuredContent, nil
	}
	if text := contentText(res.Content); text != "" {
		return text, nil
	}
	return res.Content, nil
}

// Close shuts the session down, terminating the child process for stdio
// transports.
func (s *Session) Close() error {
	return s.session.Close()
}

// contentText flattens textual content blocks into one string.
func contentText(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// connectionError classifies a transport-level failure as a timeout or a
// connection error, attributed to the given backend.
func connectionError(ctx context.Context, backendID, tool string, err error) error {
	kind := backend.ErrConnection
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = backend.ErrTimeout
	}
	return &backend.InvokeError{
		Backend: backendID,
		Tool:    tool,
		Err:     fmt.Errorf("%w: %v", kind, err),
	}
}
