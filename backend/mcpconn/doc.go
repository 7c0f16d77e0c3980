// Package mcpconn dials Model Context Protocol backends.
//
// It implements the backend.Dialer contract on top of the official MCP
// Go SDK. Stdio backends are launched as child processes and spoken to
// over their stdin/stdout; streamable HTTP backends are reached at the
// endpoint named by the descriptor.
//
// Every Dial performs the MCP initialize handshake followed by a ping,
// so a returned session is known live. Callers bound the whole open with
// a context deadline; an unresponsive backend surfaces as
// backend.ErrTimeout rather than a hang.
package mcpconn
