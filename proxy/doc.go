// Package proxy coordinates routing, backend sessions, and aggregation.
//
// The Coordinator is the module's public surface. It exposes four
// operations:
//
//   - RouteAndInvoke: resolve a tool name (and optional hint) to a
//     backend, open a fresh session, invoke, close, and return a
//     normalized InvocationResult. It never returns a Go error; every
//     failure is captured in the result value.
//   - ListAllCapabilities: ask every registered backend for its tool
//     list concurrently. One backend's failure lands in that backend's
//     entry and nowhere else.
//   - StatusAll: ping every backend concurrently, timing each round
//     trip, and derive an overall health of healthy, partial, or
//     unhealthy from the per-backend results.
//   - DescribeConfiguration: report the registry and routing setup
//     without any I/O.
//
// Every invocation scope gets its own session: open, use, close. No
// session outlives a call and none is shared between concurrent calls,
// so aggregate fan-out needs no locking beyond joining the results.
//
//	coord, err := proxy.New(proxy.Options{
//	    Registry: reg,
//	    Strategy: route.NewPrefix(reg, "_", "filesystem"),
//	})
//
//	result := coord.RouteAndInvoke(ctx, "github_create_issue", args, "")
package proxy
