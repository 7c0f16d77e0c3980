package proxy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/toolproxy/backend"
	"github.com/jonwraymond/toolproxy/backend/mcpconn"
	"github.com/jonwraymond/toolproxy/route"
)

// DefaultCallTimeout bounds each backend handshake and invocation when
// Options.CallTimeout is unset.
const DefaultCallTimeout = 30 * time.Second

// Errors returned by Options validation.
var (
	ErrRegistryRequired = errors.New("proxy: Registry is required")
	ErrStrategyRequired = errors.New("proxy: Strategy is required")
)

// Options configures a Coordinator.
type Options struct {
	// Registry is the immutable backend table to route against.
	// Required.
	Registry *backend.Registry

	// Strategy decides which backend serves a request.
	// Required.
	Strategy route.Strategy

	// Dialer opens backend sessions.
	// Default: an MCP dialer (stdio and streamable HTTP).
	Dialer backend.Dialer

	// CallTimeout bounds each backend handshake and invocation. The
	// timeout applies per backend, so one slow backend cannot stall an
	// aggregate operation past its own slot.
	// Default: DefaultCallTimeout.
	CallTimeout time.Duration

	// Logger is an optional logger for observability.
	Logger Logger
}

// validate checks that required fields are set.
func (o *Options) validate() error {
	if o.Registry == nil {
		return ErrRegistryRequired
	}
	if o.Strategy == nil {
		return ErrStrategyRequired
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Dialer == nil {
		o.Dialer = &mcpconn.Dialer{}
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
}

// Coordinator orchestrates the router and per-call backend sessions. It
// is safe for concurrent use: all fields are set at construction and the
// registry is immutable.
type Coordinator struct {
	registry    *backend.Registry
	strategy    route.Strategy
	dialer      backend.Dialer
	callTimeout time.Duration
	logger      Logger
}

// New creates a Coordinator from the given options.
func New(opts Options) (*Coordinator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	return &Coordinator{
		registry:    opts.Registry,
		strategy:    opts.Strategy,
		dialer:      opts.Dialer,
		callTimeout: opts.CallTimeout,
		logger:      opts.Logger,
	}, nil
}

// RouteAndInvoke resolves the tool name to a backend, opens a fresh
// session, invokes the native tool, and closes the session. It never
// returns a Go error: every failure, including routing to an
// unregistered default, is normalized into the result value.
func (c *Coordinator) RouteAndInvoke(ctx context.Context, tool string, args map[string]any, hint string) InvocationResult {
	decision := c.strategy.Route(tool, hint)
	c.logf("routing %q (hint %q) to backend %q as %q", tool, hint, decision.BackendID, decision.NativeTool)
	return c.invoke(ctx, decision, args)
}

// InvokeAt routes with a hint strategy over the same registry and
// default, regardless of the configured strategy. Callers that already
// decided the backend (the decision engine) use it so their choice is
// honored verbatim instead of re-derived from a prefix. Like
// RouteAndInvoke, it never returns a Go error.
func (c *Coordinator) InvokeAt(ctx context.Context, backendID, tool string, args map[string]any) InvocationResult {
	hinted := route.NewHint(c.registry, c.defaultBackend())
	decision := hinted.Route(tool, backendID)
	c.logf("direct invoke of %q on backend %q as %q", tool, decision.BackendID, decision.NativeTool)
	return c.invoke(ctx, decision, args)
}

// invoke opens a scoped session for a routing decision, invokes, and
// normalizes any failure into the result value.
func (c *Coordinator) invoke(ctx context.Context, decision route.Decision, args map[string]any) InvocationResult {
	result := InvocationResult{Backend: decision.BackendID, Tool: decision.NativeTool}

	desc, ok := c.registry.Resolve(decision.BackendID)
	if !ok {
		result.Err = &backend.InvokeError{
			Backend: decision.BackendID,
			Tool:    decision.NativeTool,
			Err:     fmt.Errorf("%w: %s", backend.ErrBackendNotFound, decision.BackendID),
		}
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	sess, err := c.dialer.Dial(ctx, desc)
	if err != nil {
		c.logf("backend %q dial failed: %v", desc.ID, err)
		result.Err = err
		return result
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			c.logf("backend %q close failed: %v", desc.ID, cerr)
		}
	}()

	payload, err := sess.Invoke(ctx, decision.NativeTool, args)
	if err != nil {
		c.logf("backend %q tool %q failed: %v", desc.ID, decision.NativeTool, err)
		result.Err = err
		return result
	}

	result.Success = true
	result.Payload = payload
	return result
}

// ListAllCapabilities asks every registered backend for its tool list,
// one concurrent probe per backend. The result has exactly one entry per
// backend; a failed backend contributes its error, not an absent entry,
// and does not disturb the other entries.
func (c *Coordinator) ListAllCapabilities(ctx context.Context) AggregatedCapabilities {
	ids := c.registry.IDs()
	entries := make([]CapabilityEntry, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			caps, err := c.listOne(ctx, id)
			entries[i] = CapabilityEntry{Capabilities: caps, Err: err}
			return nil
		})
	}
	// Workers always return nil; the join cannot fail.
	_ = g.Wait()

	out := make(AggregatedCapabilities, len(ids))
	for i, id := range ids {
		out[id] = entries[i]
	}
	return out
}

// StatusAll probes every registered backend concurrently, timing each
// round trip, and derives the overall health from the per-backend
// outcomes alone.
func (c *Coordinator) StatusAll(ctx context.Context) StatusReport {
	ids := c.registry.IDs()
	statuses := make([]BackendStatus, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			start := time.Now()
			caps, err := c.listOne(ctx, id)
			statuses[i] = BackendStatus{
				Reachable:       err == nil,
				Latency:         time.Since(start),
				CapabilityCount: len(caps),
				Err:             err,
			}
			return nil
		})
	}
	_ = g.Wait()

	report := StatusReport{
		Backends: make(map[string]BackendStatus, len(ids)),
		Total:    len(ids),
	}
	for i, id := range ids {
		report.Backends[id] = statuses[i]
		if statuses[i].Reachable {
			report.Reachable++
		}
	}
	report.Overall = deriveHealth(report.Reachable, report.Total)

	c.logf("status: %d/%d backends reachable, overall %s", report.Reachable, report.Total, report.Overall)
	return report
}

// listOne opens a scoped session to one backend and lists its tools.
func (c *Coordinator) listOne(ctx context.Context, id string) ([]backend.Capability, error) {
	desc, ok := c.registry.Resolve(id)
	if !ok {
		// Unreachable for IDs sourced from the registry itself.
		return nil, &backend.InvokeError{Backend: id, Err: backend.ErrBackendNotFound}
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	sess, err := c.dialer.Dial(ctx, desc)
	if err != nil {
		c.logf("backend %q dial failed: %v", id, err)
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			c.logf("backend %q close failed: %v", id, cerr)
		}
	}()

	return sess.ListCapabilities(ctx)
}

// TestRoute reports where a tool name would be routed without opening
// any session.
func (c *Coordinator) TestRoute(tool, hint string) RouteReport {
	decision := c.strategy.Route(tool, hint)
	return RouteReport{
		Tool:       tool,
		Backend:    decision.BackendID,
		NativeTool: decision.NativeTool,
		Fallback:   decision.Fallback,
		Registered: c.registry.Has(decision.BackendID),
		Strategy:   c.strategy.Name(),
	}
}

// DescribeConfiguration returns a read-only snapshot of the registry and
// routing setup. It performs no I/O.
func (c *Coordinator) DescribeConfiguration() ConfigSnapshot {
	snapshot := ConfigSnapshot{
		Backends:       c.registry.IDs(),
		Strategy:       c.strategy.Name(),
		DefaultBackend: c.defaultBackend(),
		CallTimeout:    c.callTimeout,
	}
	if d, ok := c.strategy.(interface{ Delimiter() string }); ok {
		snapshot.Delimiter = d.Delimiter()
	}
	return snapshot
}

// defaultBackend returns the strategy's fallback backend, when it has one.
func (c *Coordinator) defaultBackend() string {
	if d, ok := c.strategy.(interface{ Default() string }); ok {
		return d.Default()
	}
	return ""
}

// Registry exposes the coordinator's backend table for collaborators
// that validate against it.
func (c *Coordinator) Registry() *backend.Registry {
	return c.registry
}

// logf logs through the optional logger.
func (c *Coordinator) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Logf(format, args...)
	}
}
