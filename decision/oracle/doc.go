// Package oracle provides completion-service clients for the decision
// engine.
//
// Both the OpenAI and Anthropic clients implement decision.Oracle: one
// prompt in, raw completion text out. Requests are made with low
// temperature and a small token budget, since the reply is expected to
// be a single JSON routing object rather than prose. Reply validation
// stays in the decision package; these clients return whatever the
// service said.
package oracle
