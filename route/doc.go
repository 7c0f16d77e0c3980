// Package route maps requested tool names to backend IDs.
//
// Two interchangeable strategies are provided:
//
//   - Prefix: tool names carry the backend ID before a delimiter, as in
//     "github_create_issue". The prefix is matched against the registry
//     and stripped exactly once before the call is forwarded.
//   - Hint: an out-of-band hint names the backend directly; the tool name
//     is forwarded as-is apart from the same one-time prefix strip.
//
// Routing never rejects a request. A missing, unknown, or unparseable
// routing key degrades to the configured default backend, which then
// reports tool-not-found itself if the guess was wrong. Strategies are
// pure: same inputs, same decision, no I/O.
package route
