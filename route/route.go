package route

import (
	"strings"

	"github.com/jonwraymond/toolproxy/backend"
)

// DefaultDelimiter separates the backend prefix from the native tool name.
const DefaultDelimiter = "_"

// Decision is the outcome of routing one request.
type Decision struct {
	// BackendID is the backend the request resolves to.
	BackendID string

	// NativeTool is the tool name to forward, with the routed backend's
	// prefix stripped exactly once when it was present.
	NativeTool string

	// Fallback reports that the routing key did not identify a known
	// backend and the default was used instead.
	Fallback bool
}

// Strategy decides which backend serves a request.
//
// Contract:
// - Pure: no I/O, no mutation; safe for concurrent use.
// - Total: every input resolves to some backend; strategies degrade to
//   their default rather than erroring.
type Strategy interface {
	// Name identifies the strategy ("prefix" or "hint") for
	// configuration reporting.
	Name() string

	// Route maps a requested tool name and optional out-of-band hint to
	// a backend and the native tool name to forward.
	Route(tool, hint string) Decision
}

// Prefix routes by the substring before the first delimiter occurrence
// in the tool name.
type Prefix struct {
	registry  *backend.Registry
	delimiter string
	def       string
}

// NewPrefix creates a prefix strategy over the given registry. An empty
// delimiter defaults to DefaultDelimiter. defaultBackend receives every
// request whose prefix is missing or unknown.
func NewPrefix(registry *backend.Registry, delimiter, defaultBackend string) *Prefix {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Prefix{registry: registry, delimiter: delimiter, def: defaultBackend}
}

// Name returns "prefix".
func (p *Prefix) Name() string { return "prefix" }

// Delimiter returns the configured delimiter.
func (p *Prefix) Delimiter() string { return p.delimiter }

// Default returns the fallback backend ID.
func (p *Prefix) Default() string { return p.def }

// Route extracts the prefix before the first delimiter. A known prefix
// routes there; anything else falls back to the default backend. The
// hint is ignored by this strategy.
func (p *Prefix) Route(tool, _ string) Decision {
	if i := strings.Index(tool, p.delimiter); i > 0 {
		if prefix := tool[:i]; p.registry.Has(prefix) {
			return Decision{BackendID: prefix, NativeTool: tool[i+len(p.delimiter):]}
		}
	}
	return Decision{
		BackendID:  p.def,
		NativeTool: stripPrefix(tool, p.def, p.delimiter),
		Fallback:   true,
	}
}

// Hint routes by an explicit out-of-band backend hint.
type Hint struct {
	registry  *backend.Registry
	delimiter string
	def       string
}

// NewHint creates a hint strategy over the given registry. An absent or
// unknown hint falls back to defaultBackend.
func NewHint(registry *backend.Registry, defaultBackend string) *Hint {
	return &Hint{registry: registry, delimiter: DefaultDelimiter, def: defaultBackend}
}

// Name returns "hint".
func (h *Hint) Name() string { return "hint" }

// Default returns the fallback backend ID.
func (h *Hint) Default() string { return h.def }

// Route resolves to the hinted backend when it is registered, otherwise
// to the default. The routed backend's own prefix is stripped from the
// tool name exactly once if present, so prefixed names still reach the
// backend under their native name.
func (h *Hint) Route(tool, hint string) Decision {
	if hint != "" && h.registry.Has(hint) {
		return Decision{BackendID: hint, NativeTool: stripPrefix(tool, hint, h.delimiter)}
	}
	return Decision{
		BackendID:  h.def,
		NativeTool: stripPrefix(tool, h.def, h.delimiter),
		Fallback:   true,
	}
}

// stripPrefix removes "<backendID><delimiter>" from the front of tool,
// exactly once, only when present.
func stripPrefix(tool, backendID, delimiter string) string {
	if backendID == "" {
		return tool
	}
	if rest, ok := strings.CutPrefix(tool, backendID+delimiter); ok {
		return rest
	}
	return tool
}
