// Package decision selects a route from a free-form request using an
// external completion oracle.
//
// One request flows through four steps: collect the live capability
// catalog from every backend, ask the oracle to pick
// {backend, tool, arguments} as a JSON object, validate that choice
// against the catalog, and invoke. When the oracle's reply is invalid
// in any way, a deterministic fallback is invoked instead.
//
// The oracle's reply is untrusted text. It is parsed and validated
// before use, and it is never retried: one completion per request, with
// the fallback (default backend, its first advertised tool, empty
// arguments) absorbing every malformed or out-of-catalog reply. Only a
// catalog collection in which every backend failed is terminal, surfaced
// as ErrNoBackends.
package decision
