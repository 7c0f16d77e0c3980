// Package knowledge asks questions of a knowledge-base tool hosted on
// one of the proxy's backends.
//
// The client does not talk to a backend directly. It invokes the
// coordinator with an explicit backend hint, so the knowledge backend
// benefits from the same scoped sessions, timeouts, and error taxonomy
// as every other invocation.
package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolproxy/proxy"
)

// DefaultTool is the native tool name queried when Options.Tool is unset.
const DefaultTool = "query_knowledge_base"

// Errors returned by the knowledge client.
var (
	ErrCoordinatorRequired = errors.New("knowledge: coordinator is required")
	ErrBackendRequired     = errors.New("knowledge: backend is required")

	// ErrQueryFailed indicates the knowledge tool ran but reported
	// failure, or returned a payload the client could not interpret.
	ErrQueryFailed = errors.New("knowledge: query failed")
)

// Answer is a knowledge-base reply.
type Answer struct {
	// Text is the answer body.
	Text string

	// Sources names the documents the answer was drawn from. May be
	// empty when the tool does not report provenance.
	Sources []string
}

// Service answers free-form questions.
//
// Contract:
//   - Query returns a non-empty Answer.Text or a non-nil error.
//   - Implementations must honor ctx cancellation.
type Service interface {
	Query(ctx context.Context, question string) (Answer, error)
}

// Options configures a Client.
type Options struct {
	// Coordinator performs the backend invocation.
	// Required.
	Coordinator *proxy.Coordinator

	// Backend is the ID of the backend hosting the knowledge tool.
	// Required.
	Backend string

	// Tool is the native tool name to invoke.
	// Default: DefaultTool.
	Tool string
}

// validate checks that required options are set.
func (o *Options) validate() error {
	if o.Coordinator == nil {
		return ErrCoordinatorRequired
	}
	if o.Backend == "" {
		return ErrBackendRequired
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Tool == "" {
		o.Tool = DefaultTool
	}
}

// Client queries a knowledge-base tool through the proxy coordinator.
type Client struct {
	coordinator *proxy.Coordinator
	backend     string
	tool        string
}

var _ Service = (*Client)(nil)

// New creates a knowledge client with the given options.
func New(opts Options) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	return &Client{
		coordinator: opts.Coordinator,
		backend:     opts.Backend,
		tool:        opts.Tool,
	}, nil
}

// Query sends one question to the knowledge tool and interprets the
// reply.
func (c *Client) Query(ctx context.Context, question string) (Answer, error) {
	res := c.coordinator.InvokeAt(ctx, c.backend, c.tool, map[string]any{
		"question": question,
	})
	if !res.Success {
		return Answer{}, res.Err
	}
	return parseAnswer(res.Payload)
}

// parseAnswer interprets a knowledge tool payload. Structured replies
// carry {"success": bool, "answer": string, "sources": [...]}; plain
// text replies are taken as the answer body verbatim.
func parseAnswer(payload any) (Answer, error) {
	switch v := payload.(type) {
	case string:
		if v == "" {
			return Answer{}, fmt.Errorf("%w: empty reply", ErrQueryFailed)
		}
		return Answer{Text: v}, nil
	case map[string]any:
		if ok, present := v["success"].(bool); present && !ok {
			return Answer{}, fmt.Errorf("%w: %s", ErrQueryFailed, failureReason(v))
		}
		text, _ := v["answer"].(string)
		if text == "" {
			return Answer{}, fmt.Errorf("%w: reply has no answer field", ErrQueryFailed)
		}
		return Answer{Text: text, Sources: sourceNames(v)}, nil
	default:
		return Answer{}, fmt.Errorf("%w: unexpected payload type %T", ErrQueryFailed, payload)
	}
}

// failureReason extracts the tool's own error message, if any.
func failureReason(v map[string]any) string {
	if msg, ok := v["error"].(string); ok && msg != "" {
		return msg
	}
	return "tool reported failure"
}

// sourceNames collects source document names from either the "sources"
// or "source_documents" field. Entries may be plain strings or objects
// with a "source" field.
func sourceNames(v map[string]any) []string {
	raw, ok := v["sources"].([]any)
	if !ok {
		raw, ok = v["source_documents"].([]any)
	}
	if !ok {
		return nil
	}
	var names []string
	for _, entry := range raw {
		switch e := entry.(type) {
		case string:
			names = append(names, e)
		case map[string]any:
			if name, ok := e["source"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}
