package decision

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jonwraymond/toolproxy/proxy"
)

// Errors returned by the decision flow.
var (
	// ErrNoBackends indicates every backend failed during capability
	// collection; the request cannot proceed.
	ErrNoBackends = errors.New("decision: no backends available")

	// ErrInvalidDecision indicates the oracle's reply failed parsing or
	// validation against the live catalog. It is resolved internally by
	// the fallback and never returned from Run.
	ErrInvalidDecision = errors.New("decision: invalid oracle decision")

	// ErrCoordinatorRequired and ErrOracleRequired are returned by
	// Options validation.
	ErrCoordinatorRequired = errors.New("decision: Coordinator is required")
	ErrOracleRequired      = errors.New("decision: Oracle is required")
)

// Oracle is the external completion service that picks a route.
//
// Contract:
// - Complete returns the raw completion text for a prompt; the caller
//   treats it as untrusted and validates before use.
// - Context: implementations must honor cancellation/deadlines.
// - Concurrency: implementations must be safe for concurrent use.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls the function.
func (f OracleFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Decision is a validated route choice.
type Decision struct {
	// Backend and Tool name the target; Tool is the backend's native
	// tool name.
	Backend string `json:"backend"`
	Tool    string `json:"tool"`

	// Arguments are passed to the tool unmodified.
	Arguments map[string]any `json:"arguments"`

	// Fallback reports that the oracle's reply was discarded and the
	// deterministic fallback substituted.
	Fallback bool `json:"-"`
}

// Options configures an Engine.
type Options struct {
	// Coordinator provides the capability catalog and executes the
	// decided invocation.
	// Required.
	Coordinator *proxy.Coordinator

	// Oracle picks the route.
	// Required.
	Oracle Oracle

	// DefaultBackend anchors the fallback decision.
	// Default: the coordinator's routing default.
	DefaultBackend string

	// Logger is an optional logger for observability.
	Logger proxy.Logger
}

// validate checks that required fields are set.
func (o *Options) validate() error {
	if o.Coordinator == nil {
		return ErrCoordinatorRequired
	}
	if o.Oracle == nil {
		return ErrOracleRequired
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.DefaultBackend == "" {
		o.DefaultBackend = o.Coordinator.DescribeConfiguration().DefaultBackend
	}
}

// Engine drives the collect → request → validate → invoke flow.
type Engine struct {
	coordinator *proxy.Coordinator
	oracle      Oracle
	def         string
	logger      proxy.Logger
}

// New creates an Engine from the given options.
func New(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	return &Engine{
		coordinator: opts.Coordinator,
		oracle:      opts.Oracle,
		def:         opts.DefaultBackend,
		logger:      opts.Logger,
	}, nil
}

// Decide collects the live catalog and produces a validated decision.
// Any invalid oracle reply resolves to the fallback; the only error is
// ErrNoBackends, when no backend could be listed at all.
func (e *Engine) Decide(ctx context.Context, request string) (Decision, error) {
	catalog := e.coordinator.ListAllCapabilities(ctx)
	if catalog.AllFailed() {
		return Decision{}, fmt.Errorf("%w: every backend failed capability collection", ErrNoBackends)
	}

	reply, err := e.oracle.Complete(ctx, buildPrompt(request, catalog))
	if err != nil {
		e.logf("oracle request failed, using fallback: %v", err)
		return e.fallback(catalog), nil
	}

	d, err := parseDecision(reply)
	if err == nil {
		err = validateDecision(d, catalog)
	}
	if err != nil {
		e.logf("discarding oracle reply, using fallback: %v", err)
		return e.fallback(catalog), nil
	}

	e.logf("oracle decided backend %q tool %q", d.Backend, d.Tool)
	return d, nil
}

// Run decides a route for the request and invokes it. The decided
// backend is used verbatim through hint routing rather than re-derived
// from a prefix.
func (e *Engine) Run(ctx context.Context, request string) (proxy.InvocationResult, Decision, error) {
	d, err := e.Decide(ctx, request)
	if err != nil {
		return proxy.InvocationResult{}, Decision{}, err
	}

	result := e.coordinator.InvokeAt(ctx, d.Backend, d.Tool, d.Arguments)
	return result, d, nil
}

// fallback builds the deterministic substitute decision: the default
// backend and its first advertised tool with empty arguments. When the
// default's own listing failed, the first tool of the first listable
// backend (in sorted ID order) is used so the fallback still names a
// real, live tool.
func (e *Engine) fallback(catalog proxy.AggregatedCapabilities) Decision {
	d := Decision{Backend: e.def, Arguments: map[string]any{}, Fallback: true}

	if entry, ok := catalog[e.def]; ok && entry.Err == nil && len(entry.Capabilities) > 0 {
		d.Tool = entry.Capabilities[0].Name
		return d
	}

	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		entry := catalog[id]
		if entry.Err == nil && len(entry.Capabilities) > 0 {
			d.Backend = id
			d.Tool = entry.Capabilities[0].Name
			return d
		}
	}
	return d
}

// validateDecision rejects a decision naming an unknown backend, a
// backend whose listing failed, or a tool that backend does not
// advertise.
func validateDecision(d Decision, catalog proxy.AggregatedCapabilities) error {
	entry, ok := catalog[d.Backend]
	if !ok {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidDecision, d.Backend)
	}
	if entry.Err != nil {
		return fmt.Errorf("%w: backend %q has no advertised capabilities: %v", ErrInvalidDecision, d.Backend, entry.Err)
	}
	for _, c := range entry.Capabilities {
		if c.Name == d.Tool {
			return nil
		}
	}
	return fmt.Errorf("%w: backend %q does not advertise tool %q", ErrInvalidDecision, d.Backend, d.Tool)
}

// logf logs through the optional logger.
func (e *Engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Logf(format, args...)
	}
}
