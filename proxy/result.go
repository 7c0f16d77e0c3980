package proxy

import (
	"time"

	"github.com/jonwraymond/toolproxy/backend"
)

// InvocationResult is the normalized outcome of one routed invocation.
// Exactly one of Payload and Err is meaningful, selected by Success.
type InvocationResult struct {
	// Success reports whether the invocation completed without error.
	Success bool

	// Backend is the backend the call was routed to.
	Backend string

	// Tool is the native tool name that was (or would have been)
	// forwarded.
	Tool string

	// Payload is the backend-defined result when Success is true.
	Payload any

	// Err carries the failure when Success is false. It can be
	// classified against the backend package sentinels with errors.Is.
	Err error
}

// CapabilityEntry is one backend's slot in an aggregate listing: either
// its advertised tools or the error that kept them from being listed.
type CapabilityEntry struct {
	Capabilities []backend.Capability
	Err          error
}

// AggregatedCapabilities maps every registered backend ID to its
// capability listing outcome. Built fresh per call, never cached.
type AggregatedCapabilities map[string]CapabilityEntry

// AllFailed reports whether no backend produced a listing. An empty
// aggregate counts as failed.
func (a AggregatedCapabilities) AllFailed() bool {
	for _, entry := range a {
		if entry.Err == nil {
			return false
		}
	}
	return true
}

// TotalTools returns the number of tools across all successful entries.
func (a AggregatedCapabilities) TotalTools() int {
	n := 0
	for _, entry := range a {
		n += len(entry.Capabilities)
	}
	return n
}

// Health is the derived overall state of the backend fleet.
type Health string

// Overall health values.
const (
	// Healthy: every backend reachable.
	Healthy Health = "healthy"

	// Partial: some backends reachable, some not.
	Partial Health = "partial"

	// Unhealthy: no backend reachable.
	Unhealthy Health = "unhealthy"
)

// BackendStatus describes one backend's probe outcome.
type BackendStatus struct {
	// Reachable reports whether the handshake and capability listing
	// both succeeded.
	Reachable bool

	// Latency is the probe round-trip time, measured whether or not the
	// probe succeeded.
	Latency time.Duration

	// CapabilityCount is the number of tools the backend advertised.
	CapabilityCount int

	// Err is the probe failure, when Reachable is false.
	Err error
}

// StatusReport aggregates per-backend probes with the derived overall
// health.
type StatusReport struct {
	// Backends has one entry per registered backend, failures included.
	Backends map[string]BackendStatus

	// Reachable and Total count the probes.
	Reachable int
	Total     int

	// Overall is derived purely from the per-backend outcomes.
	Overall Health
}

// deriveHealth computes the overall state from probe counts.
func deriveHealth(reachable, total int) Health {
	switch {
	case total > 0 && reachable == total:
		return Healthy
	case reachable > 0:
		return Partial
	default:
		return Unhealthy
	}
}

// ConfigSnapshot is a read-only view of the coordinator's configuration.
type ConfigSnapshot struct {
	// Backends lists registered backend IDs, sorted.
	Backends []string

	// Strategy is the routing strategy name.
	Strategy string

	// DefaultBackend receives requests whose routing key resolves to no
	// known backend.
	DefaultBackend string

	// Delimiter is the prefix delimiter; empty when the strategy does
	// not use one.
	Delimiter string

	// CallTimeout bounds each backend handshake and invocation.
	CallTimeout time.Duration
}

// RouteReport is the outcome of a routing dry run: where a name would
// land, without opening any session.
type RouteReport struct {
	// Tool is the requested name as given.
	Tool string

	// Backend and NativeTool are the routing decision.
	Backend    string
	NativeTool string

	// Fallback reports that the default backend was chosen because the
	// routing key matched nothing.
	Fallback bool

	// Registered reports whether the decided backend exists in the
	// registry. False only when the configured default itself is
	// unregistered.
	Registered bool

	// Strategy is the routing strategy name that produced the decision.
	Strategy string
}
